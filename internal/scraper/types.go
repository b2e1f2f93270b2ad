// internal/scraper/types.go
package scraper

// Extraction methods recorded on every result.
const (
	MethodBridge    = "bridge"
	MethodWebDriver = "webdriver"
)

// Record kinds, used for metrics and logging.
const (
	KindPerson  = "person"
	KindCompany = "company"
	KindJob     = "job"
)

// Person is a member profile.
type Person struct {
	Name        string       `json:"name"`
	Headline    string       `json:"headline"`
	Location    string       `json:"location"`
	About       string       `json:"about"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
	Skills      []string     `json:"skills"`

	LinkedInURL      string `json:"linkedin_url"`
	ExtractionMethod string `json:"extraction_method"`
	// URL and Error are only set on fallback records.
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type Education struct {
	InstitutionName string `json:"institution_name"`
	DegreeName      string `json:"degree_name"`
	Years           string `json:"years"`
}

// Company is a company page.
type Company struct {
	Name         string   `json:"name"`
	Tagline      string   `json:"tagline"`
	Industry     string   `json:"industry"`
	CompanySize  string   `json:"company_size"`
	Headquarters string   `json:"headquarters"`
	Founded      string   `json:"founded"`
	About        string   `json:"about"`
	Website      *string  `json:"website"`
	Employees    []string `json:"employees"`

	LinkedInURL      string `json:"linkedin_url"`
	ExtractionMethod string `json:"extraction_method"`
	URL              string `json:"url,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Job is a job posting.
type Job struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Description    string   `json:"description"`
	SeniorityLevel string   `json:"seniority_level"`
	EmploymentType string   `json:"employment_type"`
	Industry       string   `json:"industry"`
	JobFunctions   []string `json:"job_functions"`

	LinkedInURL      string `json:"linkedin_url"`
	ExtractionMethod string `json:"extraction_method"`
	URL              string `json:"url,omitempty"`
	Error            string `json:"error,omitempty"`
}

// normalize replaces nil slices so records always encode lists as [].
func (p *Person) normalize() {
	if p.Experiences == nil {
		p.Experiences = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
}

func (c *Company) normalize() {
	if c.Employees == nil {
		c.Employees = []string{}
	}
}

func (j *Job) normalize() {
	if j.JobFunctions == nil {
		j.JobFunctions = []string{}
	}
}
