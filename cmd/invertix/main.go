// Command invertix parses a text corpus, builds a compressed inverted
// index, and serves ranked BM25 queries over it.
package main

import "github.com/arclight-data/invertix/cmd/invertix/cmd"

func main() {
	cmd.Execute()
}
