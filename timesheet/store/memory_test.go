package store

import (
	"testing"

	"github.com/warp/pontaj/timesheet"
	"github.com/warp/pontaj/timesheet/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) timesheet.Backend {
		return NewMemory()
	})
}
