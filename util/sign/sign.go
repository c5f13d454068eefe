// Command sign answers ed25519 sign-in challenges by hand, for servers or
// scripts that cannot run quill itself.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abira1/Julian-D-Rozario-sub001/internal/identity"
)

func main() {
	keyPath := flag.String("key", "privkey.pem", "PKCS#8 PEM ed25519 private key")
	flag.Parse()

	privKey, err := identity.LoadPrivateKey(*keyPath)
	if err != nil {
		fmt.Println("Error loading private key:", err)
		os.Exit(1)
	}

	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	outputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	// A challenge given as an argument is signed once.
	if flag.NArg() > 0 {
		sig, err := identity.Sign(privKey, flag.Arg(0))
		if err != nil {
			fmt.Println(outputStyle.Render("Error: " + err.Error()))
			os.Exit(1)
		}
		fmt.Println(flag.Arg(0) + "." + sig)
		return
	}

	fmt.Println("Enter challenges one by one. Type 'quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("Enter challenge (base64): "))
		if !scanner.Scan() {
			break
		}

		challengeB64 := strings.TrimSpace(scanner.Text())
		if challengeB64 == "" {
			continue
		}
		if challengeB64 == "quit" {
			break
		}

		sig, err := identity.Sign(privKey, challengeB64)
		if err != nil {
			fmt.Println(outputStyle.Render("Error: " + err.Error()))
			continue
		}
		// The credential quill would send is the challenge and signature joined by a dot.
		fmt.Println(outputStyle.Render("Credential: " + challengeB64 + "." + sig))
	}

	if err := scanner.Err(); err != nil {
		fmt.Println("Error reading input:", err)
	}
}
