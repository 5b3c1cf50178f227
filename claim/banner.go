package claim

import (
	"fmt"

	"github.com/moyoez/claimdesk/types"
)

// NewDateBanner builds the bilingual eligibility banner for v.
func NewDateBanner(v *types.VerificationResult) types.DateBanner {
	eligible := v.Eligible()
	days := v.Days()
	b := types.DateBanner{Eligible: eligible, Days: days}
	if eligible {
		b.English = "The product is within the claim period."
		b.Thai = "สินค้าอยู่ในระยะเวลาที่สามารถเคลมได้"
	} else {
		b.English = "The product is outside the claim period."
		b.Thai = "สินค้าเกินระยะเวลาที่สามารถเคลมได้"
	}
	if days >= 0 {
		b.English += fmt.Sprintf(" (%d days since production)", days)
		b.Thai += fmt.Sprintf(" (%d วันนับจากวันผลิต)", days)
	}
	return b
}
