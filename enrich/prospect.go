package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nementium/agentcore/budget"
	"github.com/nementium/agentcore/search"
)

// Query slots of the search fan-out. Results are joined back by slot, not by
// completion order.
const (
	queryCompanyWeb = iota
	queryCompanyLinkedIn
	queryCompanySector
	queryPersonLinkedIn
	queryCount
)

type searchJob struct {
	slot  int
	query string
	max   int
}

// prospect runs the parallel search fan-out and folds the hits into an
// Enrichment plus the raw snippets for later extraction. A query that errors
// or times out contributes an empty slot; siblings are unaffected.
func (p *Pipeline) prospect(ctx context.Context, lead Lead) (Enrichment, []string) {
	enr := newEnrichment(lead)

	jobs := buildSearchJobs(lead)
	if len(jobs) == 0 {
		return enr, nil
	}
	p.logger.Info("prospecting fan-out", "lead_id", lead.ID, "queries", len(jobs))

	results := make([][]search.Result, queryCount)
	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job searchJob) {
			defer wg.Done()
			child, cancel := budget.Child(ctx, p.budgets.Search)
			defer cancel()

			hits, err := p.searcher.Search(child, job.query, job.max)
			if err != nil {
				p.logger.Warn("prospecting query failed", "lead_id", lead.ID, "query", job.query, "error", err.Error())
				return
			}
			results[job.slot] = hits
		}(job)
	}
	wg.Wait()

	var snippets []string
	addHit := func(url, snippet string) {
		if url != "" {
			enr.Sources = append(enr.Sources, url)
		}
		if snippet != "" {
			snippets = append(snippets, snippet)
		}
	}

	web := results[queryCompanyWeb]
	if len(web) > 3 {
		web = web[:3]
	}
	for _, hit := range web {
		addHit(hit.URL, hit.Snippet)
		if enr.Company.Website == "" && isCompanyWebsite(lead.Company, hit.URL) {
			enr.Company.Website = hit.URL
		}
	}

	for _, hit := range results[queryCompanyLinkedIn] {
		if strings.Contains(strings.ToLower(hit.URL), "linkedin.com/company") {
			enr.Company.LinkedInURL = hit.URL
			addHit(hit.URL, hit.Snippet)
			break
		}
	}

	for _, hit := range results[queryCompanySector] {
		if hit.Snippet != "" {
			addHit(hit.URL, hit.Snippet)
		}
	}

	for _, hit := range results[queryPersonLinkedIn] {
		if strings.Contains(strings.ToLower(hit.URL), "linkedin.com/in/") {
			enr.Person.LinkedInURL = hit.URL
			addHit(hit.URL, hit.Snippet)
			break
		}
	}

	return enr, snippets
}

// buildSearchJobs assembles the fan-out queries. Quoting the company and
// person names keeps the backends from tokenizing them.
func buildSearchJobs(lead Lead) []searchJob {
	var jobs []searchJob
	if lead.Company != "" {
		jobs = append(jobs,
			searchJob{queryCompanyWeb, fmt.Sprintf("%q web oficial sitio", lead.Company), 5},
			searchJob{queryCompanyLinkedIn, fmt.Sprintf("%q site:linkedin.com/company", lead.Company), 3},
			searchJob{queryCompanySector, fmt.Sprintf("%q empleados sector industria", lead.Company), 5},
		)
	}
	if lead.Name != "" {
		query := fmt.Sprintf("%q site:linkedin.com/in", lead.Name)
		if lead.Company != "" {
			query = fmt.Sprintf("%q %q site:linkedin.com/in", lead.Name, lead.Company)
		}
		jobs = append(jobs, searchJob{queryPersonLinkedIn, query, 3})
	}
	return jobs
}

// isCompanyWebsite reports whether the URL looks like the company's own site:
// the collapsed company name appears in it and it is not a LinkedIn page.
func isCompanyWebsite(company, url string) bool {
	if company == "" || url == "" {
		return false
	}
	companyClean := strings.NewReplacer(" ", "", "-", "").Replace(strings.ToLower(company))
	urlClean := strings.ReplaceAll(strings.ToLower(url), "-", "")
	return strings.Contains(urlClean, companyClean) && !strings.Contains(urlClean, "linkedin")
}
