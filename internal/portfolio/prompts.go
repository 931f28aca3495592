package portfolio

import (
	"fmt"
	"strings"
)

// ResearchSystemPrompt is the system prompt for all search-backed sections.
const ResearchSystemPrompt = `You are an expert research analyst with full web search capabilities.

YOUR CAPABILITIES:
- You CAN search the web in real-time
- You CAN access company websites, LinkedIn, Crunchbase, news sites
- You CAN find current data about companies and people

YOUR RULES:
1. ALWAYS search before saying data is unavailable
2. NEVER use "TBD" - either find it or say "Not found after searching [X, Y, Z sources]"
3. For LinkedIn: Search "[Name] LinkedIn [Company]" and provide actual URLs (linkedin.com/in/handle)
4. For funding: Search Crunchbase, company press releases, TechCrunch
5. Cite your sources with URLs when possible
6. If data conflicts, note both values and sources

You are being paid to find this data. Do the work.`

// ConsistencySystemPrompt pins the validation call to the provided text only.
const ConsistencySystemPrompt = `You are a fact-checker. Analyze ONLY the text provided. Do NOT search the web. Do NOT attempt to call functions. Just identify contradictions in the existing research.`

// SynthesisSystemPrompt pins the digest call to extraction over provided text.
const SynthesisSystemPrompt = `You are a data extraction assistant. Your ONLY job is to find and organize data that exists in the provided text. Never search the web. Never say data is unavailable if it appears anywhere in the provided sections. Read carefully and extract.`

// SimplePrompt returns the single-call prompt for a simple section, or false
// when id is not a simple section.
func SimplePrompt(id string, in Inputs) (string, bool) {
	switch id {
	case SecFoundersStory:
		return fmt.Sprintf(`Research the founders of %s (%s).

**Founder Profiles:**

For EACH founder, create a profile:

### [Founder Name] - [Title]
- **LinkedIn:** [Search "[Name] LinkedIn" and provide actual URL like linkedin.com/in/username]
- **Education:** [University, Degree, Year if available]
- **Career Path:** [Prior companies, roles, years]
- **Notable:** [Any exits, patents, awards, publications]

**Origin Story:**

Write 2-3 paragraphs covering:
- What problem did they personally experience?
- When/how did they start %[1]s?
- What was the key insight or "aha moment"?
- Any early struggles, pivots, or first customers?

**Founder-Market Fit:**
- Why are THESE founders uniquely qualified?
- What unfair advantages do they have?

**Interviews/Media:**
- [List any podcasts, talks, or interviews with actual URLs]

SEARCH their names on LinkedIn, podcasts, YouTube, and press.`, in.CompanyName, in.CompanyURL), true

	case SecExecutiveSummary:
		return fmt.Sprintf(`For %s (%s) hiring a %s:

**Company Inflection Point**
(2 paragraphs on where %[1]s is right now)
- Current stage: funding, ARR, team size, customers
- What just happened: recent funding, product launch, milestone
- Trajectory: where are they headed

**Why This %[3]s Role Exists Now**
(2 paragraphs)
- What triggered this hire?
- What gap does it fill?
- Reporting structure and scope

**Why Now - The Four Reasons:**

1. **Capital/Resource:** [How does recent funding enable this hire?]
2. **Competitive/Market:** [What market timing makes this urgent?]
3. **Organizational:** [What growth stage demands this role?]
4. **Customer/Pipeline:** [What customer needs drive this?]

Research the company's recent announcements, funding, and job postings.`, in.CompanyName, in.CompanyURL, in.RoleTitle), true

	case SecTopPriorities:
		return fmt.Sprintf(`Research %s (%s) and define the top 3 priorities for their new %s.

For each priority:

**Priority N: [Specific Title]**
- **Objective:** [What exactly needs to be accomplished - measurable outcome]
- **Why It Matters:** [Why this is critical for %[1]s specifically right now]
- **Success Metrics:** [How will success be measured]
- **Timeline:** [18-24 month expectation]
- **Resources Needed:** [Team, budget, tools]

Make these SPECIFIC to %[1]s's actual situation based on your research. Not generic.`, in.CompanyName, in.CompanyURL, in.RoleTitle), true

	case SecSearchRequirements:
		return fmt.Sprintf(`For %s's %s role, based on their stage and situation:

**Must-Have Requirements (8 items):**

| Requirement | Why Critical for %[1]s |
|-------------|------------------------|
| [Specific requirement, one row per item, tied to their stage, industry, growth targets, competitive position, team, customers, product, or investors' expectations] | [Rationale] |

**Nice-to-Have Requirements (5 items):**
[Preference with rationale, one per line]

**Target Companies to Source Candidates From (8 companies):**

| Company | Stage | Why Good Fit |
|---------|-------|--------------|
| [Company] | [Series X, $YM ARR] | [Similar GTM, market, etc.] |

Include: competitors, companies at similar stage, same investors' portfolio companies, adjacent markets.`, in.CompanyName, in.RoleTitle), true

	case SecContradictions:
		return fmt.Sprintf(`Research %s (%s), their investors, stage, and situation. Identify strategic tensions:

**Investor Context:**
- Lead investors: [Who]
- Board members: [Who from which firms]
- Stage/Valuation: [Details]

**Strategic Tensions Matrix:**

| Topic | CEO/Founder Likely Prioritizes | Board/Investor Likely Prioritizes | How %s Navigates |
|-------|-------------------------------|----------------------------------|------------------|
| Growth vs Profitability | [Research CEO statements] | [Research investor thesis] | [Recommended approach] |
| Product vs Sales Investment | ... | ... | ... |
| Mid-market vs Enterprise | ... | ... | ... |
| US vs International | ... | ... | ... |
| Build vs Buy/Partner | ... | ... | ... |

**Key Alignment Questions for the %[3]s:**
1-3. [Specific questions to ask in interviews]

Base this on actual research about the company and investors, not generic advice.`, in.CompanyName, in.CompanyURL, in.RoleTitle), true

	case SecPitchToCandidates:
		return fmt.Sprintf(`Write a compelling pitch for the %s role at %s (%s):

**The Opportunity**

[2-3 paragraph pitch that would excite a top candidate. Include specific proof points: funding, growth rate, customers, market size. Make it compelling and specific to %[2]s.]

**Your Mission**

[What will this person actually own? Scope, team size, budget authority, key relationships.]

**Why Now**

[Why is this THE moment to join? What window is opening?]

**The Upside**

[What does success look like? Career trajectory, equity potential, impact.]

**The Team**

[Who will they work with? CEO background, leadership team caliber, board members, investors.]

Research the company thoroughly. Make this pitch specific and compelling, not generic.`, in.RoleTitle, in.CompanyName, in.CompanyURL), true
	}
	return "", false
}

// FundingHistoryPrompt is the single rich call behind the funding section.
func FundingHistoryPrompt(in Inputs) string {
	return fmt.Sprintf(`Research ALL funding rounds for %s (%s).

Search Crunchbase, PitchBook, company press releases, and TechCrunch.

**Funding Rounds Table:**

| Round | Amount | Date | Lead Investor(s) | Other Investors | Source URL |
|-------|--------|------|------------------|-----------------|------------|
| [One row per round that actually happened] | | | | | |

**Summary:**
- **Total Raised:** $X
- **Latest Round:** [Type] - $X - [Date]
- **Latest Valuation:** $X (or "Not publicly disclosed")

IMPORTANT:
- Rounds should be in CHRONOLOGICAL order (Seed before A before B before C)
- Include source URLs for verification
- If a round didn't happen, don't include it`, in.CompanyName, in.CompanyURL)
}

// LeadershipRosterPrompt is call 1 of the leadership chain.
func LeadershipRosterPrompt(in Inputs) string {
	return fmt.Sprintf(`Find ALL current executives at %s (%s).

Search:
1. Company website /about or /team page
2. LinkedIn company page, People section
3. Recent press releases
4. Crunchbase people section

Create a table of ALL C-level and VP-level people:

| Name | Title | LinkedIn URL |
|------|-------|--------------|
| [Full Name] | [Title] | linkedin.com/in/[actual-handle] |

TO FIND LINKEDIN URLs:
1. Search Google: "[Person Name] LinkedIn %[1]s"
2. The URL format is: linkedin.com/in/[username]
3. Include the ACTUAL handle, not a placeholder

Only include people you can verify currently work there.`, in.CompanyName, in.CompanyURL)
}

// LeadershipBackgroundsPrompt is call 2; it embeds call 1's roster.
func LeadershipBackgroundsPrompt(in Inputs, roster string) string {
	return fmt.Sprintf(`Research backgrounds for %s's key executives.

Executives found:
%s

For the 5 most senior executives, provide career backgrounds:

### [Name] - [Title]
- **LinkedIn:** [URL from list above]
- **Current Role:** [What they do at %[1]s]
- **Previous:** [Most recent role before %[1]s] at [Company]
- **Earlier Career:** [2-3 notable earlier roles]
- **Education:** [University, Degree]
- **Notable:** [Achievements, exits, board seats]

Search LinkedIn profiles and press mentions for each person.`, in.CompanyName, roster)
}

func BoardPrompt(in Inputs) string {
	return fmt.Sprintf(`Research the Board of Directors for %s (%s).

Search:
1. Funding announcements - investors often take board seats with major rounds
2. Company website About/Team/Leadership page
3. Crunchbase, People, filter by Board Member
4. Press releases mentioning "joins board" or "board of directors"

**Board of Directors:**

| Name | Role | Affiliation | Joined With | LinkedIn URL |
|------|------|-------------|-------------|--------------|
| [One row per member/observer] | | | | |

**Board Member Backgrounds:**

For each investor/independent board member:
- **[Name]** ([Firm]): [Title at firm]. [2 sentences on background, other notable boards/investments]

Search for each person's LinkedIn profile and include actual URLs.`, in.CompanyName, in.CompanyURL)
}

func CompanyMetricsPrompt(in Inputs) string {
	return fmt.Sprintf(`CRITICAL REQUIREMENT: Your response MUST end with a JSON block containing structured metrics. This is mandatory.

Research verified metrics for %s (%s).

Search LinkedIn, Crunchbase, company website, and press releases.

**Company Metrics:**

| Metric | Value | Source |
|--------|-------|--------|
| Legal Name | [Full legal name] | [Website/Crunchbase] |
| Founded | [Year] | [Source] |
| Headquarters | [Full address or City, State] | [Source] |
| Other Offices | [List cities] | [Source] |
| Employee Count | [Number] | LinkedIn Company Page |
| Employee Growth | [%% in last year, if available] | LinkedIn |
| Total Funding | [$X] | Crunchbase |
| Latest Round | [Type - $Amount - Date] | [Source] |
| Post-Money Valuation | [$X or "Not disclosed"] | [Source] |
| Revenue/ARR | [$X or "Private - not disclosed"] | [Source] |
| Key Customers | [Named customers] | [Website/Press] |

**All Investors:**
| Investor | Round(s) Participated | Board Seat? |
|----------|----------------------|-------------|

**Key Integrations/Partners:**
- [Partner]: [Type of partnership]

Verify each data point. Include sources.

---
MANDATORY: End your response with this exact JSON block. Fill in the values you found (use null if not found):

`+"```json"+`
{
  "employee_count": 150,
  "founded_year": 2020,
  "headquarters": "San Francisco, CA",
  "total_funding_millions": 50,
  "valuation_millions": 200,
  "funding_stage": "Series B"
}
`+"```"+`

Replace the example values above with actual data for %[1]s. This JSON block is REQUIRED.`, in.CompanyName, in.CompanyURL)
}

// CompetitorListPrompt is call 1 of the competitive landscape chain.
func CompetitorListPrompt(in Inputs) string {
	return fmt.Sprintf(`Identify 15 competitors to %s (%s).

Search for companies in the same market, mentioned as alternatives, or in analyst comparisons.

**Direct Competitors** (same core product/market) - 6 companies:
1. [Company] - [1 sentence on what they do]

**Adjacent Players** (related space, could expand) - 4 companies:
1. [Company] - [1 sentence on overlap]

**Incumbents** (legacy players being disrupted) - 3 companies:
1. [Company] - [1 sentence]

**Emerging Threats** (newer startups) - 2 companies:
1. [Company] - [1 sentence]`, in.CompanyName, in.CompanyURL)
}

// CompetitorDetailsPrompt is call 2; it embeds call 1's list.
func CompetitorDetailsPrompt(in Inputs, list string) string {
	return fmt.Sprintf(`Research detailed metrics for %s's top 10 competitors.

Competitors:
%s

For each of the top 10 competitors, search LinkedIn for employees and Crunchbase for funding:

| Company | Type | HQ | Employees | Total Funding | Latest Round | Key Differentiator |
|---------|------|----|-----------|---------------|--------------|--------------------|
| [One row per company] | | | | | | [vs %[1]s] |

For public companies, write "Public" for funding.
Search each company on LinkedIn and Crunchbase separately.`, in.CompanyName, list)
}

func NewsPrompt(in Inputs) string {
	return fmt.Sprintf(`Find news articles about %s (%s) from the past 18 months.

Search TechCrunch, VentureBeat, Forbes, Bloomberg, industry publications, and the company blog.

Return ONLY articles with verified, working URLs, grouped as:

**Funding Announcements:**
**Product/Feature News:**
**Company News (Hires, Milestones):**
**Industry Features:**
**Founder Interviews/Podcasts:**
**Company Blog:**

Each entry: - [Headline](https://actual-url.com/article) - Publication (Month Year)

Target: 10-15 total articles
Only include URLs you have actually found and verified.`, in.CompanyName, in.CompanyURL)
}

// consistencyEmbedBudget bounds each embedded section in the validation call.
const consistencyEmbedBudget = 1200

// ConsistencyPrompt embeds every completed non-terminal section and asks for
// an internal-contradiction review, web search explicitly forbidden.
func ConsistencyPrompt(in Inputs, p *Portfolio) string {
	var sb strings.Builder
	for _, s := range Catalog {
		if s.ID == SecConsistencyCheck || s.ID == SecQuickDigest || s.ID == SecSources {
			continue
		}
		text, ok := p.Get(s.ID)
		if !ok || text == "" || IsErrorText(text) {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n%s\n\n", s.ID, Excerpt(text, consistencyEmbedBudget))
	}

	return fmt.Sprintf(`You are a fact-checker reviewing research about %s.

IMPORTANT: Do NOT search the web. Only analyze the text provided below for internal contradictions.

---
RESEARCH TO CHECK:
%s---

Check for these specific issues:

**1. Conflicting Dates:** founding year consistency, funding round chronology.
**2. Conflicting Numbers:** employee counts, whether individual rounds add up to the stated total, valuation.
**3. Conflicting Names/Titles:** executives listed with the same titles everywhere, investor name spelling.
**4. Missing vs Stated:** does one section say "Not found" for something another section has?

**OUTPUT FORMAT:**

## Contradictions Found

| Data Point | Section 1 Says | Section 2 Says | Which is Correct |
|------------|----------------|----------------|------------------|

If no contradictions: Write "No contradictions found - data is internally consistent."

## Data Quality Summary

- **Founding Year / Headquarters / Total Funding / Latest Round / Employee Count / Valuation:** [Value or "Not found"]

## Gaps Identified (for manual follow-up)

List any important data marked as TBD/Not Found that should be findable.`, in.CompanyName, sb.String())
}

// QuickDigestPrompt embeds the completed research (full text for the core
// sections, bounded excerpts for the long ones) and asks for pure extraction.
func QuickDigestPrompt(in Inputs, p *Portfolio) string {
	return fmt.Sprintf(`You are a synthesis assistant. Your job is to EXTRACT and ORGANIZE data that already exists in the research below.

CRITICAL RULES:
1. Do NOT search the web
2. Do NOT say "not specified in search results" - the data IS in the research below
3. EXTRACT values directly from the sections provided
4. If a value truly isn't in any section, write "Not in research"

---
FUNDING HISTORY SECTION:
%s

---
COMPANY METRICS SECTION:
%s

---
LEADERSHIP TEAM SECTION:
%s

---
BOARD OF DIRECTORS SECTION:
%s

---
FOUNDERS STORY SECTION:
%s

---
COMPETITIVE LANDSCAPE SECTION (excerpt):
%s

---
NEWS & MEDIA SECTION (excerpt):
%s

---
CONSISTENCY CHECK:
%s

---

NOW CREATE THIS OUTPUT by extracting from the sections above:

## Company Overview

[3-4 sentences about what %s does, from Founders Story and Company Metrics.]

## Key Facts

| Attribute | Value |
|-----------|-------|
| Founded | [EXTRACT] |
| Headquarters | [EXTRACT] |
| Employees | [EXTRACT] |
| Total Funding | [EXTRACT or sum the rounds] |
| Latest Round | [EXTRACT: most recent round with amount and date] |
| Valuation | [EXTRACT] |
| Key Investors | [EXTRACT: top 3-4] |

## Leadership

[CEO and 2-3 other key executives with titles]

## Products/Services

## Target Customers

## Key Differentiators

## Recent Highlights

[3 recent developments]

REMEMBER: All this data IS in the sections above. Extract it, don't search for it.`,
		p.GetOr(SecFundingHistory, NotAvailable),
		p.GetOr(SecCompanyMetrics, NotAvailable),
		p.GetOr(SecLeadershipTeam, NotAvailable),
		p.GetOr(SecBoardMembers, NotAvailable),
		p.GetOr(SecFoundersStory, NotAvailable),
		Excerpt(p.GetOr(SecCompetitiveLandscape, NotAvailable), 800),
		Excerpt(p.GetOr(SecNewsMedia, NotAvailable), 600),
		p.GetOr(SecConsistencyCheck, NotAvailable),
		in.CompanyName)
}

func SourcesPrompt(in Inputs) string {
	return fmt.Sprintf(`Compile a comprehensive source list for %s (%s) research.

**Primary Sources:**
- Company Website: %[2]s
- LinkedIn Company Page: [Find and provide actual URL]
- Crunchbase: [Find and provide actual URL]
- Company Blog: [Find and provide actual URL if exists]

**Funding Sources:**
- [List each funding announcement article with URL]

**News Coverage:**
- [List each news article with URL]

**People Profiles:**
- [List LinkedIn URLs for executives and board researched]

**Data Sources:**
- [List Crunchbase, LinkedIn, etc. pages used]

Provide 15+ sources with actual, verified URLs.`, in.CompanyName, in.CompanyURL)
}
