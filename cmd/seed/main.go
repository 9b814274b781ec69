package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"eventpass/internal/attendance"
	"eventpass/internal/auth"
	"eventpass/internal/events"
	"eventpass/internal/groups"
	"eventpass/internal/reservations"
	"eventpass/internal/shared/config"
	"eventpass/internal/shared/constants"
	"eventpass/internal/shared/database"
	"eventpass/internal/tickets"
	"eventpass/internal/users"
	"eventpass/pkg/cache"
	"eventpass/pkg/logger"
)

const (
	staffUserID = "staff-1"
	demoUserID  = "demo-user"

	// Shown to guests at the door of the two-factor event
	devTwoFactorCode = "ABC"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting EventPass database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg, logger.GetDefault())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}
	ctx := context.Background()

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(ctx); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	verifier := auth.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)
	for _, userID := range []string{staffUserID, demoUserID} {
		token, err := verifier.Issue(userID, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to issue token for %s: %v", userID, err)
		}
		fmt.Printf("\nDev token for %s (24h):\n%s\n", userID, token)
	}

	fmt.Println("\nSeeding completed.")
}

// CleanDatabase truncates every table and resets live guest counters and cached event data
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{
		"track_entries",
		"ticket_locations",
		"wristbands",
		"rooms",
		"reservations",
		"tickets",
		"ticket_types",
		"events",
		"permissions",
		"users",
	}

	tx := s.db.PostgreSQL.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	keys := make([]string, 0, len(seedRooms()))
	for _, room := range seedRooms() {
		keys = append(keys, constants.BuildGuestCountKey(room.ID))
	}
	if err := s.db.Redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset guest counters: %w", err)
	}

	return cache.NewService(s.db.Redis, logger.GetDefault()).DeletePattern(ctx, constants.CACHE_KEY_EVENTS_ALL)
}

// SeedAll inserts ticket types, events, rooms, users and staff permissions
func (s *Seeder) SeedAll(ctx context.Context) error {
	pg := s.db.PostgreSQL.WithContext(ctx)

	ticketTypes := seedTicketTypes()
	if err := pg.Create(&ticketTypes).Error; err != nil {
		return fmt.Errorf("failed to seed ticket types: %w", err)
	}
	fmt.Printf("  Seeded %d ticket types\n", len(ticketTypes))

	seededEvents, err := seedEvents(time.Now().UTC())
	if err != nil {
		return err
	}
	if err := pg.Create(&seededEvents).Error; err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}
	fmt.Printf("  Seeded %d events\n", len(seededEvents))

	rooms := seedRooms()
	if err := pg.Create(&rooms).Error; err != nil {
		return fmt.Errorf("failed to seed rooms: %w", err)
	}
	fmt.Printf("  Seeded %d rooms\n", len(rooms))

	profiles := []users.User{
		{ID: staffUserID, FirstName: "Front", LastName: "Desk"},
		{ID: demoUserID, FirstName: "Demo", LastName: "Guest"},
	}
	if err := pg.Create(&profiles).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	permissions := auth.NewPermissionStore(s.db.PostgreSQL)
	for _, name := range []string{
		attendance.PermissionTrack,
		attendance.PermissionLookup,
		attendance.PermissionWristband,
		reservations.PermissionForceReserve,
	} {
		if err := permissions.Grant(ctx, staffUserID, name); err != nil {
			return fmt.Errorf("failed to grant %s: %w", name, err)
		}
	}
	fmt.Printf("  Granted staff permissions to %s\n", staffUserID)

	return nil
}

func seedTicketTypes() []tickets.TicketType {
	yes := true
	return []tickets.TicketType{
		{
			ID:             "adult",
			DisplayName:    "Adult",
			EligibleGroups: []groups.Group{{groups.GuestAdult}},
		},
		{
			ID:          "family",
			DisplayName: "Family",
			EligibleGroups: []groups.Group{
				{groups.GuestParent, groups.GuestChild},
				{groups.GuestParent, groups.GuestChild, groups.GuestChild},
				{groups.GuestParent, groups.GuestParent, groups.GuestChild},
			},
		},
		{
			ID:             "student",
			DisplayName:    "Student",
			EligibleGroups: []groups.Group{{groups.GuestStudent}},
		},
		{
			ID:               "vip",
			DisplayName:      "VIP",
			EligibleGroups:   []groups.Group{{groups.GuestAdult}},
			RequireTwoFactor: &yes,
		},
	}
}

func seedEvents(now time.Time) ([]events.Event, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(devTwoFactorCode), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash two-factor code: %w", err)
	}

	capacity := func(n int) *int { return &n }
	opening := "opening"
	day := now.Truncate(24 * time.Hour).Add(7 * 24 * time.Hour)
	dayEnd := day.Add(10 * time.Hour)

	return []events.Event{
		{
			ID:            opening,
			DisplayName:   "Opening Ceremony",
			DateStart:     day.Add(9 * time.Hour),
			DateEnd:       &dayEnd,
			Capacity:      capacity(200),
			TicketTypeIDs: []string{"adult", "family", "student"},
		},
		{
			ID:                     "workshop",
			DisplayName:            "Hands-on Workshop",
			DateStart:              day.Add(13 * time.Hour),
			Capacity:               capacity(20),
			RequiredEventID:        &opening,
			TicketTypeIDs:          []string{"adult", "student"},
			MaxReservationsPerUser: capacity(2),
		},
		{
			ID:               "backstage",
			DisplayName:      "Backstage Tour",
			DateStart:        day.Add(16 * time.Hour),
			Capacity:         capacity(10),
			TicketTypeIDs:    []string{"adult", "vip"},
			RequireTwoFactor: true,
			TwoFactorSecret:  string(hash),
		},
		{
			ID:            "fair",
			DisplayName:   "Open Fair",
			DateStart:     day.Add(10 * time.Hour),
			TicketTypeIDs: []string{"adult", "family", "student"},
		},
	}, nil
}

func seedRooms() []attendance.Room {
	hall := 300
	return []attendance.Room{
		{ID: "main-hall", DisplayName: "Main Hall", Capacity: &hall, PermittedTicketTypeIDs: []string{"adult", "family", "student", "vip"}},
		{ID: "lab", DisplayName: "Workshop Lab", PermittedTicketTypeIDs: []string{"adult", "student"}},
		{ID: "kids-corner", DisplayName: "Kids Corner", PermittedTicketTypeIDs: []string{"family"}},
		{ID: "backstage", DisplayName: "Backstage", PermittedTicketTypeIDs: []string{"vip"}},
	}
}
