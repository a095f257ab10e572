// Command hash-key reads an API key from the terminal without echo and
// prints its bcrypt hash for the API_KEY_HASH environment variable.
package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	fmt.Fprint(os.Stderr, "API key: ")
	key, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatalf("read key: %v", err)
	}
	if len(key) == 0 {
		log.Fatal("empty key")
	}

	hash, err := bcrypt.GenerateFromPassword(key, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash key: %v", err)
	}

	fmt.Println(string(hash))
}
