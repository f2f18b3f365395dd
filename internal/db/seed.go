package db

import (
	"database/sql"
	"fmt"
)

// catalogSeed is one row of the bundled catalog.
type catalogSeed struct {
	id             int
	size           int
	transportCost  *float64
	perTonneCost   *float64
	priceBeforeVAT float64
	allowedOnRoad  bool
	heavyWaste     bool
	createdAt      string
	updatedAt      string
}

func cost(v float64) *float64 { return &v }

// nr32Catalog is the skip list published for the NR32 (Lowestoft) area.
var nr32Catalog = []catalogSeed{
	{17933, 4, nil, nil, 278, true, true, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:52.813"},
	{17934, 6, nil, nil, 305, true, true, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:52.992"},
	{17935, 8, nil, nil, 375, true, true, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:53.171"},
	{17936, 10, nil, nil, 400, false, false, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:53.339"},
	{17937, 12, nil, nil, 439, false, false, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:53.516"},
	{17938, 14, nil, nil, 470, false, false, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:53.69"},
	{17939, 16, nil, nil, 496, false, false, "2025-04-03T13:51:46.897146", "2025-04-07T13:16:53.876"},
	{15124, 20, cost(248), cost(248), 992, false, true, "2025-04-03T13:51:40.344435", "2025-04-07T13:16:52.434"},
	{15125, 40, cost(248), cost(248), 992, false, false, "2025-04-03T13:51:40.344435", "2025-04-07T13:16:52.603"},
}

// SeedCatalog loads the bundled NR32 catalog. Rows that already exist are
// left untouched, so seeding twice is harmless. Returns the number of rows added.
func SeedCatalog(database *sql.DB) (int, error) {
	added := 0
	for _, s := range nr32Catalog {
		res, err := database.Exec(`
			INSERT OR IGNORE INTO skips (
				id, size, hire_period_days, transport_cost, per_tonne_cost,
				price_before_vat, vat, postcode, area, forbidden,
				allowed_on_road, allows_heavy_waste, created_at, updated_at
			) VALUES (?, ?, 14, ?, ?, ?, 20, 'NR32', '', 0, ?, ?, ?, ?)`,
			s.id, s.size, s.transportCost, s.perTonneCost,
			s.priceBeforeVAT, s.allowedOnRoad, s.heavyWaste, s.createdAt, s.updatedAt,
		)
		if err != nil {
			return added, fmt.Errorf("seed skip %d: %w", s.id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, fmt.Errorf("seed skip %d: %w", s.id, err)
		}
		added += int(n)
	}
	return added, nil
}
