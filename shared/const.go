package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleUser  = "user"
	RoleAdmin = "admin"

	StoryStatusDraft     = "DRAFT"
	StoryStatusPublished = "PUBLISHED"
	StoryStatusArchived  = "ARCHIVED"

	StoryCategoryEducation   = "education"
	StoryCategoryHealthcare  = "healthcare"
	StoryCategoryFoodRelief  = "food_relief"
	StoryCategoryEnvironment = "environment"
	StoryCategoryCommunity   = "community"

	ContactSubjectDonation    = "donation"
	ContactSubjectVolunteer   = "volunteer"
	ContactSubjectPartnership = "partnership"
	ContactSubjectGeneral     = "general"

	ContactSourceWebsite = "website"

	// Route classes for the request gatekeeper. Each class carries its
	// own quota; buckets are keyed per (client, class, path).
	RouteClassAuth          = "auth"
	RouteClassAdminMutation = "admin_mutation"
	RouteClassGeneral       = "api_general"

	CacheKeyPublicStories = "stories:public"
	CacheKeyAdminStories  = "stories:admin"

	MaxStoryTags      = 10
	MaxStoryTagLength = 50
	MaxStoryImages    = 5

	SignInPath       = "/signin"
	UnauthorizedPath = "/unauthorized"
)

func ValidStoryStatuses() []string {
	return []string{StoryStatusDraft, StoryStatusPublished, StoryStatusArchived}
}

func ValidStoryCategories() []string {
	return []string{
		StoryCategoryEducation,
		StoryCategoryHealthcare,
		StoryCategoryFoodRelief,
		StoryCategoryEnvironment,
		StoryCategoryCommunity,
	}
}

func ValidContactSubjects() []string {
	return []string{
		ContactSubjectDonation,
		ContactSubjectVolunteer,
		ContactSubjectPartnership,
		ContactSubjectGeneral,
	}
}
