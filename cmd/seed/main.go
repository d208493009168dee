package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/store"
	authUtils "civicfix-be/utils"
)

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

var demoUsers = []seedUser{
	{Name: "Priya Sharma", Email: "priya@example.com", Password: "password123", Role: models.RoleUser},
	{Name: "Rahul Verma", Email: "rahul@example.com", Password: "password123", Role: models.RoleUser},
	{Name: "Ward Officer", Email: "officer@civicfix.com", Password: "admin12345", Role: models.RoleAdmin},
}

func main() {
	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	db, err := config.ConnectDB(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer config.DisconnectDB(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := store.NewMongoUserStore(db)
	complaints := store.NewMongoComplaintStore(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create user indexes: %v", err)
	}
	if err := complaints.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create complaint indexes: %v", err)
	}

	seeded := make([]*models.User, 0, len(demoUsers))
	for _, su := range demoUsers {
		user, err := seedUserAccount(ctx, users, su)
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", su.Email, err)
		}
		seeded = append(seeded, user)
	}

	created, err := seedComplaints(ctx, complaints, seeded[0], seeded[1])
	if err != nil {
		log.Fatalf("Failed to seed complaints: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users: %d", len(seeded))
	log.Printf("  - Complaints created: %d", created)

	for _, user := range seeded {
		printToken(cfg, user.ID.Hex(), user.Email, user.Role)
	}
	printToken(cfg, cfg.BootstrapAdmin.ID, cfg.BootstrapAdmin.Email, models.RoleAdmin)
}

// seedUserAccount creates the user unless the email is already taken.
func seedUserAccount(ctx context.Context, users store.UserStore, su seedUser) (*models.User, error) {
	existing, err := users.FindByEmail(ctx, su.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Printf("User %s already exists, skipping", su.Email)
		return existing, nil
	}

	user := &models.User{
		Name:      su.Name,
		Email:     su.Email,
		Role:      su.Role,
		Password:  su.Password,
		CreatedAt: time.Now(),
	}
	if err := user.HashPassword(); err != nil {
		return nil, err
	}
	return users.Create(ctx, user)
}

func seedComplaints(ctx context.Context, complaints store.ComplaintStore, first, second *models.User) (int, error) {
	now := time.Now()
	samples := []models.Complaint{
		{
			Title:       "Burst water main",
			Description: "Water has been gushing onto the road since morning.",
			Location:    "MG Road, near the bus depot",
			Category:    models.Water,
			OwnerID:     first.ID.Hex(),
			CreatedAt:   now.AddDate(0, 0, -5),
		},
		{
			Title:       "Streetlights out",
			Description: "The entire lane has been dark for three nights.",
			Location:    "4th Cross, Indiranagar",
			Category:    models.Electricity,
			OwnerID:     first.ID.Hex(),
			CreatedAt:   now.AddDate(0, 0, -2),
		},
		{
			Title:       "Garbage not collected",
			Description: "Bins overflowing outside the market.",
			Location:    "KR Market",
			Category:    models.Sanitation,
			OwnerID:     second.ID.Hex(),
			CreatedAt:   now.AddDate(0, 0, -1),
		},
		{
			// Filed before owners were recorded; repaired on the next status update.
			Title:       "Pothole on ring road",
			Description: "Large pothole in the left lane.",
			Location:    "Outer Ring Road",
			Category:    models.Road,
			CreatedAt:   now.AddDate(0, 0, -20),
		},
	}

	created := 0
	for i := range samples {
		samples[i].Status = models.Pending
		if _, err := complaints.Create(ctx, &samples[i]); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func printToken(cfg *config.Config, userID, email string, role models.Role) {
	token, err := authUtils.GenerateToken(cfg.JWTSecret, userID, role, cfg.TokenTTL)
	if err != nil {
		log.Printf("Could not sign token for %s: %v", email, err)
		return
	}
	log.Printf("%s (%s): %s", email, role, token)
}
