// Command gateway-abi prints the contract ABI fragments the gateway binds to,
// or generates typed Go bindings for them with abigen.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi/abigen"
	"github.com/shamank/skynet-gateway/pkg/blockchain"
)

type contract struct {
	name string
	abi  string
}

var contracts = []contract{
	{"AppNFT", blockchain.AppNFTABI},
	{"AppManager", blockchain.AppManagerABI},
	{"SubscriptionBalance", blockchain.SubscriptionBalanceABI},
	{"SkynetWrapper", blockchain.SkynetWrapperABI},
}

func main() {
	bind := flag.Bool("bind", false, "generate Go bindings instead of printing the ABIs")
	pkg := flag.String("pkg", "skynetbind", "package name of the generated bindings")
	out := flag.String("out", "", "output file, relative to the module root; stdout when empty")
	flag.Parse()

	var (
		content []byte
		err     error
	)
	if *bind {
		content, err = generate(*pkg)
	} else {
		content, err = dump()
	}
	if err != nil {
		log.Fatalf("Failed to render contracts: %v", err)
	}

	if *out == "" {
		_, _ = os.Stdout.Write(content)
		return
	}

	path := *out
	if !filepath.IsAbs(path) {
		root, err := moduleRoot()
		if err != nil {
			log.Fatalf("Failed to locate module root: %v", err)
		}
		path = filepath.Join(root, path)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
}

func generate(pkg string) ([]byte, error) {
	types := make([]string, 0, len(contracts))
	abis := make([]string, 0, len(contracts))
	bytecodes := make([]string, 0, len(contracts))
	for _, c := range contracts {
		types = append(types, c.name)
		abis = append(abis, c.abi)
		bytecodes = append(bytecodes, "")
	}
	src, err := abigen.Bind(types, abis, bytecodes, nil, pkg, nil, nil)
	if err != nil {
		return nil, err
	}
	return []byte(src), nil
}

// dump writes the fragments as one indented JSON object keyed by contract name.
func dump() ([]byte, error) {
	all := make(map[string]json.RawMessage, len(contracts))
	for _, c := range contracts {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(c.abi)); err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		all[c.name] = buf.Bytes()
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, statErr := os.Stat(filepath.Join(dir, "go.mod")); statErr == nil {
			return dir, nil
		}
		next := filepath.Dir(dir)
		if next == dir {
			return "", fmt.Errorf("go.mod not found from %q", dir)
		}
		dir = next
	}
}
