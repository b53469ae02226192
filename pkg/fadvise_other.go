//go:build !linux

package dupfilehash

import "github.com/spf13/afero"

func adviseAccess(file afero.File, sequential bool) {}
