package db

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedProfile is the static shape of a generated discovery profile.
type seedProfile struct {
	Name          string
	Age           int
	Gender        string
	SeekingGender string
	Bio           string
	Location      string
	Interests     []string
	PictureURL    string
}

// fakeProfiles is the fixed set used to populate discovery before a
// real user base exists.
var fakeProfiles = []seedProfile{
	{
		Name: "Emily Johnson", Age: 25, Gender: "female", SeekingGender: "male",
		Bio:        "Love hiking, yoga, and trying new cuisines. Looking for someone who shares my passion for adventure!",
		Location:   "Nairobi, Kenya",
		Interests:  []string{"Hiking", "Yoga", "Cooking", "Travel"},
		PictureURL: "https://images.unsplash.com/photo-1494790108755-2616b612b786?w=400&h=400&fit=crop&crop=face",
	},
	{
		Name: "Sarah Wilson", Age: 28, Gender: "female", SeekingGender: "male",
		Bio:        "Professional photographer with a love for art and music. Seeking meaningful connections and deep conversations.",
		Location:   "Mombasa, Kenya",
		Interests:  []string{"Photography", "Art", "Music", "Coffee"},
		PictureURL: "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?w=400&h=400&fit=crop&crop=face",
	},
	{
		Name: "Michael Chen", Age: 30, Gender: "male", SeekingGender: "female",
		Bio:        "Tech entrepreneur who loves weekend getaways and good food. Always up for trying something new!",
		Location:   "Kisumu, Kenya",
		Interests:  []string{"Technology", "Travel", "Food", "Movies"},
		PictureURL: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=400&h=400&fit=crop&crop=face",
	},
	{
		Name: "David Martinez", Age: 27, Gender: "male", SeekingGender: "female",
		Bio:        "Fitness enthusiast and nature lover. Looking for someone to share outdoor adventures and quiet moments.",
		Location:   "Nakuru, Kenya",
		Interests:  []string{"Fitness", "Nature", "Reading", "Cycling"},
		PictureURL: "https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=400&h=400&fit=crop&crop=face",
	},
	{
		Name: "Jessica Taylor", Age: 26, Gender: "female", SeekingGender: "male",
		Bio:        "Artist and dancer with a passion for creativity. Seeking someone who appreciates the beauty in everyday life.",
		Location:   "Eldoret, Kenya",
		Interests:  []string{"Art", "Dancing", "Music", "Literature"},
		PictureURL: "https://images.unsplash.com/photo-1544005313-94ddf0286df2?w=400&h=400&fit=crop&crop=face",
	},
}

// SeedTestData populates the database with the demo dataset:
//
//  1. The fixed set of fake discovery profiles, each owned by a seed
//     user with a hashed password and a starting credit balance.
//  2. One admin user ("admin@pendo.app" / "password") with an admin
//     profile and credits.
//
// Idempotent: if fake profiles already exist nothing is inserted, so it
// is safe to run on every development boot.
func SeedTestData(db *gorm.DB) error {
	var existing int64
	if err := db.Model(&Profile{}).Where("is_fake_profile = ?", true).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check existing fake profiles: %w", err)
	}
	if existing > 0 {
		log.Println("Fake profiles already exist, skipping seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i, sp := range fakeProfiles {
		email := fmt.Sprintf("%s%d@pendo.app", slug(sp.Name), i+1)
		user := User{
			Email:        email,
			PasswordHash: string(hash),
			Active:       true,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", email, err)
		}

		profile := Profile{
			UserID:            user.ID,
			Name:              sp.Name,
			Age:               sp.Age,
			Gender:            sp.Gender,
			SeekingGender:     sp.SeekingGender,
			Location:          sp.Location,
			Bio:               sp.Bio,
			Interests:         sp.Interests,
			ProfilePictureURL: sp.PictureURL,
			IsFakeProfile:     true,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile %s: %w", sp.Name, err)
		}

		credit := Credit{UserID: user.ID, Balance: 10, TotalPurchased: 10}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&credit).Error; err != nil {
			return fmt.Errorf("failed to seed credits for %s: %w", email, err)
		}
	}
	log.Printf("Seeded %d fake profiles.", len(fakeProfiles))

	admin := User{
		Email:        "admin@pendo.app",
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	adminProfile := Profile{
		UserID:        admin.ID,
		Name:          "Pendo Admin",
		Age:           30,
		Gender:        "female",
		SeekingGender: "male",
		IsAdmin:       true,
	}
	if err := db.Create(&adminProfile).Error; err != nil {
		return fmt.Errorf("failed to seed admin profile: %w", err)
	}
	if err := db.Create(&Credit{UserID: admin.ID, Balance: 100, TotalPurchased: 100}).Error; err != nil {
		return fmt.Errorf("failed to seed admin credits: %w", err)
	}
	log.Println("Seeded admin user.")

	return nil
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", ".")
}

// SeedMinimalTestData wipes the relevant tables and inserts a small
// deterministic fixture for tests.
//
// Users:
//   - u-alex  (male, seeking female, 2 credits)
//   - u-betty (female, seeking male, 1 credit)
//   - u-carol (female, seeking male, no credit row -> balance 0)
func SeedMinimalTestData(db *gorm.DB) error {
	for _, table := range []string{"messages", "matches", "credits", "transactions", "profiles", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	users := []User{
		{ID: "u-alex", Email: "alex@test.com", PasswordHash: "x", Active: true},
		{ID: "u-betty", Email: "betty@test.com", PasswordHash: "x", Active: true},
		{ID: "u-carol", Email: "carol@test.com", PasswordHash: "x", Active: true},
	}
	if err := db.Create(&users).Error; err != nil {
		return err
	}

	profiles := []Profile{
		{ID: "p-alex", UserID: "u-alex", Name: "Alex", Age: 28, Gender: "male", SeekingGender: "female"},
		{ID: "p-betty", UserID: "u-betty", Name: "Betty", Age: 26, Gender: "female", SeekingGender: "male"},
		{ID: "p-carol", UserID: "u-carol", Name: "Carol", Age: 25, Gender: "female", SeekingGender: "male"},
	}
	if err := db.Create(&profiles).Error; err != nil {
		return err
	}

	credits := []Credit{
		{UserID: "u-alex", Balance: 2, TotalPurchased: 2},
		{UserID: "u-betty", Balance: 1, TotalPurchased: 1},
	}
	if err := db.Create(&credits).Error; err != nil {
		return err
	}

	return nil
}
