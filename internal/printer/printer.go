package printer

import (
	"github.com/slok/etc/internal/model"
)

// Printer is the interface for printing run information.
type Printer interface {
	PrintList(runs []model.Run) error
	PrintRun(run model.Run) error
}
