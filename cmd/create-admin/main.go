package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shinasport/terminal-booking-backend/internal/config"
	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/models"
	"github.com/shinasport/terminal-booking-backend/internal/services"
)

// Bootstraps an admin account. Registration through the API only creates
// regular users, so the first admin has to come from here.
func main() {
	var (
		dbURLFlag   string
		username    string
		email       string
		password    string
		displayName string
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&username, "username", "", "admin username (required)")
	flag.StringVar(&email, "email", "", "admin email (required)")
	flag.StringVar(&password, "password", "", "admin password (required, min 6 characters)")
	flag.StringVar(&displayName, "display-name", "", "display name (defaults to username)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	if username == "" || email == "" || password == "" {
		flag.Usage()
		log.Fatal("-username, -email and -password are required")
	}
	if len(password) < 6 {
		log.Fatal("password must be at least 6 characters")
	}

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	users := database.NewUserRepository(db)
	authService := services.NewAuthService(users, config.DefaultBcryptCost, true)

	user, profile, err := authService.Register(username, email, password, displayName)
	if err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	if err := promoteToAdmin(db, profile.ID); err != nil {
		log.Fatalf("failed to promote user to admin: %v", err)
	}

	fmt.Println("Admin user created successfully:")
	fmt.Printf("  id:       %s\n", user.ID)
	fmt.Printf("  username: %s\n", user.Username)
	fmt.Printf("  email:    %s\n", user.Email)
	fmt.Printf("  role:     %s\n", models.RoleAdmin)
}

func promoteToAdmin(db database.DB, profileID int64) error {
	result, err := db.Exec(`UPDATE user_profiles SET role = $1 WHERE id = $2`, models.RoleAdmin, profileID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("profile %d not found", profileID)
	}
	return nil
}
