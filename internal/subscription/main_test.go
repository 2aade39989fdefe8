package subscription

import (
	"os"
	"testing"

	"github.com/mechamederoot1/projeto-unipass/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
