// Command schemaflow is the CLI for the schema interchange engine.
package main

import "github.com/leapstack-labs/schemaflow/internal/cli"

func main() {
	cli.Execute()
}
