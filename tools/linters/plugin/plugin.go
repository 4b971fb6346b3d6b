// Package main exposes the arena analyzers as a golangci-lint module plugin.
package main

import (
	"golang.org/x/tools/go/analysis"

	"basegraph.app/arena/tools/linters/enumvalidator"
)

type AnalyzerPlugin struct{}

func (*AnalyzerPlugin) GetAnalyzers() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		enumvalidator.Analyzer,
	}
}

func New(conf any) ([]*analysis.Analyzer, error) {
	return []*analysis.Analyzer{enumvalidator.Analyzer}, nil
}

// main is required for `go build ./...`; it is unused when built with -buildmode=plugin.
func main() {}
