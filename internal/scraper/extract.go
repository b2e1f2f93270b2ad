// internal/scraper/extract.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Placeholders used when a job page lacks one of its headline fields.
const (
	missingJobTitle       = "Could not extract title"
	missingJobCompany     = "Could not extract company"
	missingJobLocation    = "Could not extract location"
	missingJobDescription = "Could not extract description"
)

func text(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.First().Text())
}

func extractPerson(doc *goquery.Document, p *Person) {
	p.Name = text(doc.Find(selPersonName))
	p.Headline = text(doc.Find(selPersonHeadline))
	p.Location = text(doc.Find(selPersonLocation))
	p.About = text(doc.Find(selPersonAbout))

	doc.Find(selExperienceItems).Each(func(_ int, item *goquery.Selection) {
		title := text(item.Find(".display-flex .t-bold"))
		company := text(item.Find(".t-normal"))
		if title == "" || company == "" {
			return
		}
		p.Experiences = append(p.Experiences, Experience{
			Title:    title,
			Company:  company,
			Duration: text(item.Find(".t-black--light")),
		})
	})

	doc.Find(selEducationItems).Each(func(_ int, item *goquery.Selection) {
		school := text(item.Find(".t-bold"))
		if school == "" {
			return
		}
		p.Education = append(p.Education, Education{
			InstitutionName: school,
			DegreeName:      text(item.Find(".t-normal")),
			Years:           text(item.Find(".t-black--light")),
		})
	})

	doc.Find(selSkillItems).Each(func(_ int, item *goquery.Selection) {
		if name := strings.TrimSpace(item.Text()); name != "" {
			p.Skills = append(p.Skills, name)
		}
	})
}

func extractCompany(doc *goquery.Document, c *Company) {
	c.Name = text(doc.Find(selCompanyName))
	c.Tagline = text(doc.Find(selCompanyTagline))
	c.Industry = text(doc.Find(selCompanyIndustry))
	c.CompanySize = text(doc.Find(selCompanySize))
	c.Headquarters = text(doc.Find(selCompanyHeadquarters))
	c.Founded = text(doc.Find(selCompanyFounded))
	c.About = text(doc.Find(selCompanyAbout))

	// The first outbound link in the about section is the website.
	doc.Find(selCompanyAboutSection).First().Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if href == "" || strings.Contains(href, "linkedin.com") {
			return true
		}
		c.Website = &href
		return false
	})
}

func extractJob(doc *goquery.Document, j *Job) {
	j.Title = textOr(doc.Find(selJobTitle), missingJobTitle)
	j.Company = textOr(doc.Find(selJobCompany), missingJobCompany)
	j.Location = textOr(doc.Find(selJobLocation), missingJobLocation)
	j.Description = textOr(doc.Find(selJobDescription), missingJobDescription)

	doc.Find(selJobCriteria).Each(func(_ int, item *goquery.Selection) {
		line := strings.TrimSpace(item.Text())
		var value string
		if _, after, ok := strings.Cut(line, ":"); ok {
			value, _, _ = strings.Cut(after, ":")
			value = strings.TrimSpace(value)
		}
		switch {
		case strings.Contains(line, "Seniority level"):
			j.SeniorityLevel = value
		case strings.Contains(line, "Employment type"):
			j.EmploymentType = value
		case strings.Contains(line, "Industry"):
			j.Industry = value
		}
	})
}

func textOr(sel *goquery.Selection, placeholder string) string {
	if sel.Length() == 0 {
		return placeholder
	}
	return text(sel)
}
