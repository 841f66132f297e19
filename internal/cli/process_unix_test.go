//go:build unix

package cli

import (
	"os"
	"testing"
)

func TestProcessAlive(t *testing.T) {
	if !processAlive(os.Getpid()) {
		t.Fatal("own process reported gone")
	}
	if processAlive(0) || processAlive(-1) {
		t.Fatal("non-positive pid reported alive")
	}
}
