//go:build tools

// Package tools pins the code generators and test runner used by enforcer so
// that `go generate ./...` and `go tool` resolve the versions from go.mod.
//
//   - enumer generates the *_enumer.go string and codec methods
//   - mockgen generates evaluator.MockEvaluator
//   - ginkgo runs the *_suite_test.go suites
package tools

import (
	_ "github.com/dmarkham/enumer"
	_ "github.com/onsi/ginkgo/v2/ginkgo"
	_ "go.uber.org/mock/mockgen"
)
