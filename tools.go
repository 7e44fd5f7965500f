//go:build tools

package taskpipe

import (
	_ "go.uber.org/mock/mockgen"
)
