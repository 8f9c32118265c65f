// Package main provides a one-shot utility for session key generation.
//
// It emits the asymmetric keypair the identity provider signs session
// tokens with and the API verifies them against.
package main

import (
	"os"

	"github.com/louisbranch/boardflow/internal/platform/config"
	"github.com/louisbranch/boardflow/internal/tools/sessionkey"
)

func main() {
	if err := sessionkey.Run(os.Stdout, nil); err != nil {
		config.Exitf("generate session key: %v", err)
	}
}
