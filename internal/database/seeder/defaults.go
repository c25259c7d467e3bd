package seeder

const (
	DemoRecruiterEmail = "recruiter@demo.local"
	DemoApplicantEmail = "applicant@demo.local"
)

// Defaults seeds a recruiter and an applicant that share password, plus a
// handful of jobs published by the recruiter.
func Defaults(password string) []Seeder {
	return []Seeder{
		UsersSeeder{Password: password},
		JobsSeeder{PublisherEmail: DemoRecruiterEmail},
	}
}
