package machineid

import (
	"github.com/denisbrodbeck/machineid"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

const appID = "GoBatchPrint"

type hardwareMachineID struct{}

func NewHardwareMachineID() outbound.MachineIDService {
	return &hardwareMachineID{}
}

// GetMachineID returns the host id hashed with the application id, so the
// raw id never leaves this package.
func (h *hardwareMachineID) GetMachineID() (string, error) {
	return machineid.ProtectedID(appID)
}
