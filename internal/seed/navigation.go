package seed

import (
	"fmt"
	"strings"

	"trident-dashboards/pkg/navigation"
	"trident-dashboards/pkg/validator"
)

// DefaultNavigation is the compiled-in sidebar. Analytics is routable but
// intentionally absent here.
func DefaultNavigation() navigation.Table {
	return navigation.NewTable(
		navigation.Entry{
			Name:        "Agency Operations",
			Icon:        navigation.IconTruck,
			Route:       "/dashboard/operations",
			Description: "Monitor transportation efficiency",
		},
		navigation.Entry{
			Name:        "Governance",
			Icon:        navigation.IconShield,
			Route:       "/dashboard/governance",
			Description: "Track regulatory compliance",
		},
		navigation.Entry{
			Name:        "Compliance",
			Icon:        navigation.IconClipboardCheck,
			Route:       "/dashboard/compliance",
			Description: "Quality and compliance tracking",
		},
		navigation.Entry{
			Name:        "Payments",
			Icon:        navigation.IconDollarSign,
			Route:       "/dashboard/payments",
			Description: "Financial transactions",
		},
		navigation.Entry{
			Name:        "Samples CRM",
			Icon:        navigation.IconUsers,
			Route:       "/dashboard/samples-crm",
			Description: "Customer quality tracking",
		},
		navigation.Entry{
			Name:        "Financing",
			Icon:        navigation.IconBarChart,
			Route:       "/dashboard/financing",
			Description: "Operational efficiency metrics",
		},
		navigation.Entry{
			Name:        "RM Performance",
			Icon:        navigation.IconBoxes,
			Route:       "/dashboard/rm-performance",
			Description: "Raw material performance",
		},
		navigation.Entry{
			Name:        "Supplier KYC",
			Icon:        navigation.IconBuilding,
			Route:       "/dashboard/supplier-kyc",
			Description: "Supplier compliance tracking",
		},
	)
}

// ValidateNavigation checks every sidebar entry and rejects routes that
// overlap, so at most one entry can ever be active.
func ValidateNavigation(table navigation.Table) error {
	entries := table.Entries()
	if len(entries) == 0 {
		return fmt.Errorf("navigation has no entries")
	}

	for i, entry := range entries {
		if err := validator.Validate(entry); err != nil {
			return fmt.Errorf("navigation entry %d (%s): %w", i, entry.Route, err)
		}
		for _, other := range entries[:i] {
			if entry.Route == other.Route || strings.HasPrefix(entry.Route, other.Route+"/") || strings.HasPrefix(other.Route, entry.Route+"/") {
				return fmt.Errorf("navigation routes %s and %s overlap", other.Route, entry.Route)
			}
		}
	}
	return nil
}
