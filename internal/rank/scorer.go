// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank scores and filters web sources per report section.
// See docs/ARCHITECTURE.md § Source Ranking.
package rank

import (
	"net/url"
	"strings"
	"time"
)

// domainBucket pairs a trust score with the domain keywords that earn it.
// Buckets are checked in order; the first match wins, so a domain that
// matches several buckets gets the highest applicable score.
type domainBucket struct {
	score    float64
	keywords []string
}

// domainBuckets maps source hosts to trust weights: official docs and
// standards bodies first, vendor engineering blogs next, down to code
// hosting sites.
var domainBuckets = []domainBucket{
	{1.0, []string{
		"nextjs.org", "remix.run", "react.dev", "vuejs.org", "angular.io", "svelte.dev",
		"solidjs.com", "qwik.builder.io", "astro.build", "deno.land", "nodejs.org",
		"python.org", "docs.microsoft.com", "developer.mozilla.org", "w3.org",
		"ecma-international.org", "graphql.org", "restfulapi.net", "kubernetes.io",
		"docker.com", "cloud.google.com", "aws.amazon.com", "azure.microsoft.com",
		"spring.io", "golang.org", "rust-lang.org", "llvm.org", "kernel.org",
		"apache.org", "eclipse.org", "ietf.org", "iso.org", "nist.gov", "mit.edu",
		"stanford.edu", "berkeley.edu", "cmu.edu", "ieee.org", "acm.org", "arxiv.org",
		"dl.acm.org", "jstor.org", "sciencedirect.com", "link.springer.com",
		"wiley.com", "taylorandfrancis.com", "elsevier.com",
	}},
	{0.9, []string{
		"vercel.com/blog", "engineering.fb.com", "aws.amazon.com/blogs", "netflixtechblog",
		"google.dev", "microsoft.com/research", "redhat.com/en/blog", "ibm.com/blogs",
		"developer.apple.com", "android.com/developers", "stripe.com/blog",
		"shopify.dev", "salesforce.com/news",
	}},
	{0.8, []string{
		"smashingmagazine.com", "css-tricks.com", "infoq.com", "thenewstack.io",
		"martinfowler.com", "oreilly.com", "apress.com", "manning.com", "techcrunch.com",
		"wired.com", "zdnet.com", "infoworld.com", "computerworld.com", "arstechnica.com",
	}},
	{0.7, []string{
		"dev.to", "freecodecamp.org", "logrocket.com", "toptal.com/developers",
		"hackernoon.com", "towardsdatascience.com", "betterprogramming.pub",
		"medium.com", "hashnode.dev", "devdojo.com",
	}},
	{0.6, []string{
		"stackoverflow.com", "reddit.com/r/programming", "quora.com", "stackexchange.com",
	}},
	{0.5, []string{
		"github.com", "gitlab.com", "bitbucket.org", "gitee.com",
	}},
}

// unknownDomainScore is the trust weight for hosts matching no bucket.
const unknownDomainScore = 0.3

// DomainScore maps a source URL to a trust weight based on its host alone.
func DomainScore(rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil {
		return unknownDomainScore
	}
	domain := u.Host
	for _, bucket := range domainBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(domain, keyword) {
				return bucket.score
			}
		}
	}
	return unknownDomainScore
}

// pageAgeLayouts are the timestamp formats search providers emit.
var pageAgeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// RecencyScore maps a source's publish timestamp to a freshness weight
// relative to the run date: 1.0 within 365 days, 0.3 when older, 0.6 when
// the date is missing or unparseable.
func RecencyScore(pageAge string, runDate time.Time) float64 {
	if pageAge == "" {
		return 0.6
	}
	published, err := parsePageAge(pageAge)
	if err != nil {
		return 0.6
	}
	if days := int(runDate.Sub(published).Hours() / 24); days <= 365 {
		return 1.0
	}
	return 0.3
}

func parsePageAge(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range pageAgeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
