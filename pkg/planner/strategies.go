package planner

import "regexp"

// strategy names, in rule-priority order. First pattern that matches wins.
const (
	StrategyMVP         = "mvp"
	StrategyAnalysis    = "analysis"
	StrategyRefactoring = "refactoring"
	StrategyFeature     = "feature"
	StrategyGeneric     = "generic"
)

type strategyRule struct {
	name    string
	pattern *regexp.Regexp
}

// strategyRules is ordered; selectStrategy returns the first match.
var strategyRules = []strategyRule{
	{StrategyMVP, regexp.MustCompile(`(?i)\bmvp\b|\bbuild\b.*\b(app|application)\b`)},
	{StrategyAnalysis, regexp.MustCompile(`(?i)\b(analyze|review|audit)\b`)},
	{StrategyRefactoring, regexp.MustCompile(`(?i)\b(refactor|restructure|modernize)\b`)},
	{StrategyFeature, regexp.MustCompile(`(?i)\b(add|implement|create)\b`)},
}

func selectStrategy(query string) string {
	for _, r := range strategyRules {
		if r.pattern.MatchString(query) {
			return r.name
		}
	}
	return StrategyGeneric
}

// skeleton describes one task in a fixed strategy template.
type skeleton struct {
	id, title, category string
	deps                []string
	effort              int
	outputs             []string
}

func mvpSkeleton() []skeleton {
	return []skeleton{
		{id: "requirements-analysis", title: "Requirements analysis", category: "planning", effort: 3, outputs: []string{"requirements-doc"}},
		{id: "architecture-design", title: "Architecture design", category: "planning", deps: []string{"requirements-analysis"}, effort: 4, outputs: []string{"architecture-doc"}},
		{id: "database-schema", title: "Database schema", category: "design", deps: []string{"architecture-design"}, effort: 3, outputs: []string{"schema"}},
		{id: "api-design", title: "API design", category: "design", deps: []string{"architecture-design"}, effort: 3, outputs: []string{"api-spec"}},
		{id: "backend-implementation", title: "Backend implementation", category: "implementation", deps: []string{"database-schema", "api-design"}, effort: 8, outputs: []string{"backend-service"}},
		{id: "frontend-setup", title: "Frontend setup", category: "implementation", deps: []string{"architecture-design"}, effort: 2, outputs: []string{"frontend-scaffold"}},
		{id: "ui-components", title: "UI components", category: "implementation", deps: []string{"frontend-setup"}, effort: 4, outputs: []string{"ui-library"}},
		{id: "frontend-integration", title: "Frontend integration", category: "implementation", deps: []string{"ui-components", "api-design"}, effort: 3, outputs: []string{"integrated-frontend"}},
		{id: "testing", title: "Testing", category: "quality", deps: []string{"backend-implementation", "frontend-integration"}, effort: 5, outputs: []string{"test-report"}},
		{id: "deployment", title: "Deployment", category: "operations", deps: []string{"testing"}, effort: 2, outputs: []string{"deployment-artifact"}},
	}
}

func analysisSkeleton() []skeleton {
	return []skeleton{
		{id: "codebase-survey", title: "Codebase survey", category: "discovery", effort: 3, outputs: []string{"survey-notes"}},
		{id: "dependency-audit", title: "Dependency audit", category: "discovery", deps: []string{"codebase-survey"}, effort: 2, outputs: []string{"dependency-report"}},
		{id: "risk-assessment", title: "Risk assessment", category: "analysis", deps: []string{"codebase-survey", "dependency-audit"}, effort: 4, outputs: []string{"risk-report"}},
		{id: "findings-report", title: "Findings report", category: "reporting", deps: []string{"risk-assessment"}, effort: 3, outputs: []string{"final-report"}},
	}
}

func refactoringSkeleton() []skeleton {
	return []skeleton{
		{id: "baseline-characterization", title: "Baseline characterization tests", category: "safety-net", effort: 4, outputs: []string{"characterization-tests"}},
		{id: "hotspot-identification", title: "Hotspot identification", category: "analysis", deps: []string{"baseline-characterization"}, effort: 3, outputs: []string{"hotspot-list"}},
		{id: "incremental-restructuring", title: "Incremental restructuring", category: "implementation", deps: []string{"hotspot-identification"}, effort: 7, outputs: []string{"restructured-code"}},
		{id: "regression-verification", title: "Regression verification", category: "quality", deps: []string{"incremental-restructuring"}, effort: 4, outputs: []string{"verification-report"}},
	}
}

func featureSkeleton() []skeleton {
	return []skeleton{
		{id: "feature-design", title: "Feature design", category: "planning", effort: 3, outputs: []string{"feature-spec"}},
		{id: "feature-implementation", title: "Feature implementation", category: "implementation", deps: []string{"feature-design"}, effort: 6, outputs: []string{"feature-code"}},
		{id: "feature-tests", title: "Feature tests", category: "quality", deps: []string{"feature-implementation"}, effort: 3, outputs: []string{"test-suite"}},
	}
}

func genericSkeleton() []skeleton {
	return []skeleton{
		{id: "clarify-scope", title: "Clarify scope", category: "planning", effort: 2, outputs: []string{"scope-notes"}},
		{id: "execute-task", title: "Execute task", category: "implementation", deps: []string{"clarify-scope"}, effort: 5, outputs: []string{"result"}},
		{id: "verify-result", title: "Verify result", category: "quality", deps: []string{"execute-task"}, effort: 2, outputs: []string{"verification-notes"}},
	}
}

func skeletonFor(strategy string) []skeleton {
	switch strategy {
	case StrategyMVP:
		return mvpSkeleton()
	case StrategyAnalysis:
		return analysisSkeleton()
	case StrategyRefactoring:
		return refactoringSkeleton()
	case StrategyFeature:
		return featureSkeleton()
	default:
		return genericSkeleton()
	}
}

func buildTasks(skels []skeleton) []Task {
	tasks := make([]Task, 0, len(skels))
	for _, sk := range skels {
		tasks = append(tasks, Task{
			ID:              sk.id,
			Title:           sk.title,
			Description:     sk.title,
			Dependencies:    append([]string(nil), sk.deps...),
			Effort:          sk.effort,
			Category:        sk.category,
			ExpectedOutputs: append([]string(nil), sk.outputs...),
		})
	}
	return tasks
}
