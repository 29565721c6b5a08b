//go:build tinygo

package translate

import (
	"fmt"
)

// From formats an en-US Sprintf() format. Targets carry no catalog.
func From(key string, args ...any) string {
	return fmt.Sprintf(key, args...)
}
