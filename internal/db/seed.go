package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo profiles and likes.
//
// Behavior:
//  1. Clears existing data in `profiles`, `likes` and `preferences` tables.
//  2. Creates 20 profiles with deliberately mixed media column shapes
//     (native JSON array, JSON-encoded string, bare string, empty) so the
//     media parser's tolerance is exercised end to end.
//  3. Gives one user an active plus plan, one an expired x plan, and
//     varied coin balances.
//  4. Generates a like graph with guaranteed mutual pairs and a few
//     hidden (skipped) rows.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"likes", "preferences", "profiles"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE likes AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE profiles AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'likes'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'profiles'")
	}

	log.Println("Cleared existing data")

	// media column shapes rotate so every legacy form is present
	mediaShapes := []string{
		`["u/%d/photo1.jpg","u/%d/photo2.jpg"]`,
		`"[\"u/%d/photo1.jpg\"]"`,
		`u/%d/photo1.jpg`,
		``,
	}

	plusExpiry := time.Now().Add(20 * 24 * time.Hour)
	expiredX := time.Now().Add(-48 * time.Hour)

	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		shape := mediaShapes[i%len(mediaShapes)]
		media := ""
		if shape != "" {
			media = fmt.Sprintf(shape, i, i)
		}

		p := Profile{
			Username:       fmt.Sprintf("user%d", i),
			Email:          fmt.Sprintf("user%d@example.com", i),
			PasswordHash:   string(hash),
			FirstName:      fmt.Sprintf("Member%d", i),
			Media:          media,
			Coin:           int64(r.Intn(3) * 10000),
			IsVerified:     i%4 == 0,
			MembershipPlan: "free",
		}
		switch i {
		case 2:
			p.MembershipPlan = "plus"
			p.MembershipExpiresAt = &plusExpiry
		case 3:
			p.MembershipPlan = "x"
			p.MembershipExpiresAt = &expiredX
		case 5:
			// avatar precedence cases
			p.AvatarPath = fmt.Sprintf("media/u/%d/avatar.jpg", i)
		case 6:
			p.AvatarURL = "https://cdn.example.com/static/avatar6.jpg"
		}

		if err := db.Create(&p).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
	}
	log.Println("Seeded 20 profiles.")

	// --- Seed Likes ---
	counter := 0
	for from := 1; from <= 20; from++ {
		for j := 0; j < 10; j++ {
			to := uint64(r.Intn(20) + 1)
			if uint64(from) == to {
				continue
			}

			like := Like{
				FromUserID: uint64(from),
				ToUserID:   to,
				Type:       LikeTypePlain,
				IsVisible:  true,
			}
			if counter%7 == 0 {
				like.Type = LikeTypeSuperlike
				like.Comment = "Saw we both love hiking"
			}
			// a few skipped rows stay in the table, hidden
			if counter%11 == 0 {
				like.IsVisible = false
			}

			// guarantee mutual likes every 3rd pair
			if counter%3 == 0 && like.IsVisible {
				recip := Like{
					FromUserID: to,
					ToUserID:   uint64(from),
					Type:       LikeTypePlain,
					IsVisible:  true,
				}
				if err := db.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
					DoUpdates: clause.AssignmentColumns([]string{"is_visible", "type"}),
				}).Create(&recip).Error; err != nil {
					return fmt.Errorf("failed to seed reciprocal like: %w", err)
				}
			}

			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"is_visible", "type", "comment"}),
			}).Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}

			counter++
		}
	}

	log.Printf("Seeded %d likes.", counter)
	return nil
}
