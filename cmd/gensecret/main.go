package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
)

const SecretKeyBytesLen = 32

// Prints two fresh secrets: one for access token signing, one for
// refresh token signing. They must differ
func main() {
	gen := func() string {
		b := make([]byte, SecretKeyBytesLen)
		_, err := rand.Read(b)
		if err != nil {
			fmt.Printf("error while generating secret key: %v", err)
			os.Exit(1)
		}
		return hex.EncodeToString(b)
	}

	fmt.Printf("ACCESS_SECRET=%s\n", gen())
	fmt.Printf("REFRESH_SECRET=%s\n", gen())
}
