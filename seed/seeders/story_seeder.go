package seeders

import (
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Piyush5784/maa-anapurna-trust-api/model"
	"github.com/Piyush5784/maa-anapurna-trust-api/shared"
)

// StorySeeder loads a starter set of published stories so a fresh
// deployment has content on the public site.
type StorySeeder struct {
	db *gorm.DB
}

func NewStorySeeder(db *gorm.DB) *StorySeeder {
	return &StorySeeder{db: db}
}

func (s *StorySeeder) SeedStories() error {
	var count int64
	if err := s.db.Model(&model.Story{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Stories already exist, skipping story seeding")
		return nil
	}

	now := time.Now()

	seedStories := []struct {
		title    string
		slug     string
		excerpt  string
		content  string
		category string
		tags     []string
		author   string
		featured bool
	}{
		{
			title:    "Mid Day Meal Drive Reaches Five New Schools",
			slug:     "mid-day-meal-drive-reaches-five-new-schools",
			excerpt:  "Our food relief program now serves warm meals to over 800 children every school day.",
			content:  "The mid day meal drive expanded this quarter to five government schools on the city outskirts. Volunteers cook and deliver meals before the lunch bell, and attendance in the covered schools has already improved.",
			category: shared.StoryCategoryFoodRelief,
			tags:     []string{"meals", "schools"},
			author:   "Trust Kitchen Team",
			featured: true,
		},
		{
			title:    "Free Health Camp in Riverside Settlement",
			slug:     "free-health-camp-in-riverside-settlement",
			excerpt:  "Two hundred families received checkups and medicines at our weekend health camp.",
			content:  "Doctors from the district hospital joined our volunteers for a two day camp. General checkups, eye screening and a medicine counter ran from morning to evening on both days.",
			category: shared.StoryCategoryHealthcare,
			tags:     []string{"health-camp"},
			author:   "Medical Outreach Team",
			featured: false,
		},
		{
			title:    "Evening Classes Open for Working Children",
			slug:     "evening-classes-open-for-working-children",
			excerpt:  "A new evening study center gives working children a path back into school.",
			content:  "The center runs two hour sessions six days a week with volunteer teachers. The first batch of thirty students received books, bags and a hot snack on opening day.",
			category: shared.StoryCategoryEducation,
			tags:     []string{"education", "children"},
			author:   "Education Team",
			featured: false,
		},
	}

	for _, seed := range seedStories {
		tags, err := sonic.Marshal(seed.tags)
		if err != nil {
			return err
		}

		publishedAt := now
		story := model.Story{
			ID:          uuid.NewString(),
			Title:       seed.title,
			Slug:        seed.slug,
			Excerpt:     seed.excerpt,
			Content:     seed.content,
			Category:    seed.category,
			Tags:        tags,
			AuthorName:  seed.author,
			Status:      shared.StoryStatusPublished,
			Featured:    seed.featured,
			PublishedAt: &publishedAt,
		}

		if err := s.db.Create(&story).Error; err != nil {
			log.Printf("Error creating story %q: %v", seed.title, err)
			return err
		}
	}

	log.Printf("Created %d starter stories", len(seedStories))
	return nil
}
