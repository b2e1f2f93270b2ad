// internal/scraper/scripts.go
package scraper

// Page selectors shared by the in-page scripts and the HTML extractor.
const (
	selPersonName      = "h1"
	selPersonHeadline  = `section[data-section="summary"] .text-body-medium`
	selPersonLocation  = ".text-body-small.inline.t-black--light.break-words"
	selPersonAbout     = "#about ~ .display-flex .text-body-medium"
	selExperienceItems = "#experience ~ .pvs-list__container .display-flex"
	selEducationItems  = "#education ~ .pvs-list__container .display-flex"
	selSkillItems      = `#skills ~ .pvs-list__container .t-bold span[aria-hidden="true"]`

	selCompanyName         = "h1"
	selCompanyTagline      = ".org-top-card-summary__tagline"
	selCompanyIndustry     = ".org-top-card-summary__industry"
	selCompanySize         = ".org-top-card-summary__info-item:nth-child(1) dd"
	selCompanyHeadquarters = ".org-top-card-summary__info-item:nth-child(2) dd"
	selCompanyFounded      = ".org-top-card-summary__info-item:nth-child(3) dd"
	selCompanyAboutSection = `[data-section="about"]`
	selCompanyAbout        = `[data-section="about"] .text-body-medium`

	selJobTitle       = "h1"
	selJobCompany     = ".jobs-unified-top-card__company-name"
	selJobLocation    = ".jobs-unified-top-card__bullet"
	selJobDescription = ".jobs-description__content"
	selJobCriteria    = ".jobs-description__content li"
)

// The scripts are function bodies: they end in a return statement and must
// produce JSON-serializable values. Field names match the record types.

const personScript = `
const text = (sel, root = document) => {
  const el = root.querySelector(sel);
  return el ? el.textContent.trim() : null;
};

const profile = {
  name: text('h1'),
  headline: text('section[data-section="summary"] .text-body-medium'),
  location: text('.text-body-small.inline.t-black--light.break-words'),
  about: text('#about ~ .display-flex .text-body-medium'),
  experiences: [],
  education: [],
  skills: []
};

document.querySelectorAll('#experience ~ .pvs-list__container .display-flex').forEach(exp => {
  const title = text('.display-flex .t-bold', exp);
  const company = text('.t-normal', exp);
  const duration = text('.t-black--light', exp);
  if (title && company) {
    profile.experiences.push({ title, company, duration: duration || '', description: '', location: '' });
  }
});

document.querySelectorAll('#education ~ .pvs-list__container .display-flex').forEach(edu => {
  const school = text('.t-bold', edu);
  if (school) {
    profile.education.push({
      institution_name: school,
      degree_name: text('.t-normal', edu) || '',
      years: text('.t-black--light', edu) || ''
    });
  }
});

document.querySelectorAll('#skills ~ .pvs-list__container .t-bold span[aria-hidden="true"]').forEach(skill => {
  const name = skill.textContent && skill.textContent.trim();
  if (name) profile.skills.push(name);
});

return profile;
`

const companyScript = `
const text = (sel) => {
  const el = document.querySelector(sel);
  return el ? el.textContent.trim() : null;
};

const company = {
  name: text('h1'),
  tagline: text('.org-top-card-summary__tagline'),
  industry: text('.org-top-card-summary__industry'),
  company_size: text('.org-top-card-summary__info-item:nth-child(1) dd'),
  headquarters: text('.org-top-card-summary__info-item:nth-child(2) dd'),
  founded: text('.org-top-card-summary__info-item:nth-child(3) dd'),
  about: text('[data-section="about"] .text-body-medium'),
  website: null,
  employees: []
};

const about = document.querySelector('[data-section="about"]');
if (about) {
  for (const link of about.querySelectorAll('a[href]')) {
    const href = link.getAttribute('href');
    if (href && !href.includes('linkedin.com')) {
      company.website = href;
      break;
    }
  }
}

return company;
`

const jobScript = `
const text = (sel) => {
  const el = document.querySelector(sel);
  return el ? el.textContent.trim() : null;
};

const job = {
  title: text('h1'),
  company: text('.jobs-unified-top-card__company-name'),
  location: text('.jobs-unified-top-card__bullet'),
  description: text('.jobs-description__content'),
  seniority_level: '',
  employment_type: '',
  industry: '',
  job_functions: []
};

document.querySelectorAll('.jobs-description__content li').forEach(item => {
  const t = item.textContent.trim();
  const value = (t.split(':')[1] || '').trim();
  if (t.includes('Seniority level')) job.seniority_level = value;
  else if (t.includes('Employment type')) job.employment_type = value;
  else if (t.includes('Industry')) job.industry = value;
});

return job;
`
