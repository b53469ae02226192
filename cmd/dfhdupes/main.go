package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var traceEnabled = flag.Bool("trace", false, "write OpenTelemetry spans to stderr")

// initTracer installs a tracer provider that pretty-prints spans to stderr
func initTracer() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("dfhdupes"),
		semconv.ServiceVersion(Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&scanCommand{}, "")
	subcommands.Register(&deleteCommand{}, "")
	subcommands.Register(&configCommand{}, "")
	subcommands.Register(&versionCommand{}, "")

	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(int(run()))
}

// run executes the chosen subcommand so deferred shutdowns happen before exit
func run() subcommands.ExitStatus {
	if *traceEnabled {
		tp, err := initTracer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialise tracing: %v\n", err)
			return subcommands.ExitFailure
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Error shutting down tracer provider: %v\n", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdown := setupSignalHandler()
	go func() {
		<-shutdown
		cancel()
	}()

	return subcommands.Execute(ctx)
}
