package main

import "github.com/thirdweb-dev/ledger-indexer/cmd"

func main() {
	cmd.Execute()
}
