// Package engine tests the full induction pipeline. To run Ginkgo specs use the Ginkgo binary (from repo root):
//
//	go run github.com/onsi/ginkgo/v2/ginkgo ./internal/engine/...
package engine

import (
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"mlem2/internal/logging"
)

func TestEngine(t *testing.T) {
	logging.Init(slog.LevelError, "text")
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Engine Suite")
}
