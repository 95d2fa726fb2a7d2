package analytics

import (
	"fmt"

	"github.com/j-veylop/onehub-analytics-tui/internal/models"
)

// RateView is the display form of a rate snapshot.
type RateView struct {
	RPMText string
	TPMText string
	// RPMUsage is the share of the RPM limit in use, in percent. It is only
	// meaningful when HasRPMLimit is set.
	RPMUsage    float64
	TPMUsage    float64
	HasRPMLimit bool
	HasTPMLimit bool
}

// DescribeRate formats a rate snapshot for display.
func DescribeRate(r models.RateSnapshot) RateView {
	v := RateView{
		RPMText:     fmt.Sprintf("%d RPM", r.RPM),
		TPMText:     fmt.Sprintf("%d TPM", r.TPM),
		RPMUsage:    r.UsageRPMRate.Float64(),
		TPMUsage:    r.UsageTPMRate.Float64(),
		HasRPMLimit: r.MaxRPM > 0,
		HasTPMLimit: r.MaxTPM > 0,
	}
	if v.HasRPMLimit {
		v.RPMText = fmt.Sprintf("%d / %d RPM", r.RPM, r.MaxRPM)
	}
	if v.HasTPMLimit {
		v.TPMText = fmt.Sprintf("%d / %d TPM", r.TPM, r.MaxTPM)
	}
	return v
}
