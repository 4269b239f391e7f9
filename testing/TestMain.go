// Package testing flips binaries and config loaders into test mode when
// imported for side effects from a _test.go file.
package testing

import "os"

func init() {
	if os.Getenv("BIZZPORTAL_TEST_MODE") == "" {
		_ = os.Setenv("BIZZPORTAL_TEST_MODE", "1")
	}
	if os.Getenv("RECORDS_SOURCE") == "" {
		_ = os.Setenv("RECORDS_SOURCE", "memory")
	}
}
