package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		SetUnsynced(3)
		IncDrain("record_upsert", "synced")
		IncRemoteCall("create_account", "ok")
		IncAssetInstall()
		IncAssetCheckFailure()
	})
}
