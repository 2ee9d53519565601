package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	config "github.com/tapturf/turf-services/configs"
	"github.com/tapturf/turf-services/internal/turfsvc/db"
	"github.com/tapturf/turf-services/internal/turfsvc/models"
	"github.com/tapturf/turf-services/internal/turfsvc/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// seedsvc installs turf fixtures so game creation has rows to reference
// on a fresh deployment. The request path never seeds data; this command
// is the only way placeholder turfs enter the store.

const SERVICE_NAME = "seed"

func init() {
	config.Logging(SERVICE_NAME + "_service_001")
	config.LoadEnv(SERVICE_NAME)
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbpool, err := db.Connect(ctx, os.Getenv("POSTGRES_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dbpool.Close()
	log.Printf("pg connection established successfully")

	turfStore := store.NewTurfStore(dbpool)

	existing, err := turfStore.ListTurfs(ctx)
	if err != nil {
		log.Fatalf("Failed to list turfs: %v", err)
	}
	known := map[string]bool{}
	for _, t := range existing {
		known[t.Name] = true
	}

	ownerID := os.Getenv("SEED_OWNER_ID")
	if ownerID == "" {
		ownerID = "system"
	}

	var turfs []*models.Turf
	if path := os.Getenv("TURF_FIXTURES"); path != "" {
		turfs, err = loadFixtures(path, ownerID)
		if err != nil {
			log.Fatalf("Failed to load fixtures from %s: %v", path, err)
		}
	} else {
		turfs = defaultFixtures(ownerID)
	}

	seeded := 0
	for _, t := range turfs {
		if known[t.Name] {
			log.Infof("turf %q already present, skipping", t.Name)
			continue
		}
		if err := turfStore.CreateTurf(ctx, t); err != nil {
			log.Fatalf("Failed to seed turf %q: %v", t.Name, err)
		}
		seeded++
	}

	log.Infof("seeded %d turf(s), %d already present", seeded, len(turfs)-seeded)
}

// loadFixtures reads turfs from a CSV with columns:
// name,address,wd_morning,wd_afternoon,wd_evening,we_morning,
// we_afternoon,we_evening,amenities,images
// where amenities and images are |-separated.
func loadFixtures(path, ownerID string) ([]*models.Turf, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 10

	var turfs []*models.Turf
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && record[0] == "name" {
			continue // header row
		}

		prices := make([]decimal.Decimal, 6)
		for i := 0; i < 6; i++ {
			prices[i], err = decimal.NewFromString(strings.TrimSpace(record[2+i]))
			if err != nil {
				return nil, fmt.Errorf("line %d: bad price %q: %w", line, record[2+i], err)
			}
		}

		turfs = append(turfs, &models.Turf{
			ID:      uuid.New().String(),
			OwnerID: ownerID,
			Name:    strings.TrimSpace(record[0]),
			Address: strings.TrimSpace(record[1]),
			Pricing: models.Pricing{
				WeekdayMorning:   prices[0],
				WeekdayAfternoon: prices[1],
				WeekdayEvening:   prices[2],
				WeekendMorning:   prices[3],
				WeekendAfternoon: prices[4],
				WeekendEvening:   prices[5],
			},
			Amenities: splitList(record[8]),
			Images:    splitList(record[9]),
		})
	}

	return turfs, nil
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func defaultFixtures(ownerID string) []*models.Turf {
	price := func(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
	return []*models.Turf{
		{
			ID:      uuid.New().String(),
			OwnerID: ownerID,
			Name:    "Greenfield Arena",
			Address: "12 Lake View Road, Indiranagar",
			Pricing: models.Pricing{
				WeekdayMorning:   price(800),
				WeekdayAfternoon: price(600),
				WeekdayEvening:   price(1200),
				WeekendMorning:   price(1000),
				WeekendAfternoon: price(800),
				WeekendEvening:   price(1500),
			},
			Amenities: []string{"floodlights", "parking", "drinking water"},
		},
		{
			ID:      uuid.New().String(),
			OwnerID: ownerID,
			Name:    "Kickoff Turf Park",
			Address: "45 Stadium Lane, Koramangala",
			Pricing: models.Pricing{
				WeekdayMorning:   price(700),
				WeekdayAfternoon: price(500),
				WeekdayEvening:   price(1100),
				WeekendMorning:   price(900),
				WeekendAfternoon: price(700),
				WeekendEvening:   price(1400),
			},
			Amenities: []string{"floodlights", "changing rooms"},
		},
		{
			ID:      uuid.New().String(),
			OwnerID: ownerID,
			Name:    "Urban Goals HSR",
			Address: "3rd Sector Main Road, HSR Layout",
			Pricing: models.Pricing{
				WeekdayMorning:   price(750),
				WeekdayAfternoon: price(550),
				WeekdayEvening:   price(1150),
				WeekendMorning:   price(950),
				WeekendAfternoon: price(750),
				WeekendEvening:   price(1450),
			},
			Amenities: []string{"parking", "cafeteria"},
		},
	}
}
