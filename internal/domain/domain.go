package domain

import (
	"github.com/yungbote/branchpulse-backend/internal/domain/analytics"
	"github.com/yungbote/branchpulse-backend/internal/domain/jobs"
	"github.com/yungbote/branchpulse-backend/internal/domain/network"
	"github.com/yungbote/branchpulse-backend/internal/domain/series"
)

const (
	BranchTypeFullService = network.BranchTypeFullService
	BranchTypeExpress     = network.BranchTypeExpress
	BranchTypeFlagship    = network.BranchTypeFlagship

	RunStatusPending   = analytics.RunStatusPending
	RunStatusRunning   = analytics.RunStatusRunning
	RunStatusSucceeded = analytics.RunStatusSucceeded
	RunStatusFailed    = analytics.RunStatusFailed

	CoverageStatusNoCoverage   = analytics.CoverageStatusNoCoverage
	CoverageStatusUnderserved  = analytics.CoverageStatusUnderserved
	CoverageStatusBalanced     = analytics.CoverageStatusBalanced
	CoverageStatusOversupplied = analytics.CoverageStatusOversupplied

	ForecastStatusOK                  = analytics.ForecastStatusOK
	ForecastStatusInsufficientHistory = analytics.ForecastStatusInsufficientHistory

	PriorityHigh   = analytics.PriorityHigh
	PriorityMedium = analytics.PriorityMedium
	PriorityLow    = analytics.PriorityLow

	JobEventCreated   = jobs.JobEventCreated
	JobEventProgress  = jobs.JobEventProgress
	JobEventSucceeded = jobs.JobEventSucceeded
	JobEventFailed    = jobs.JobEventFailed
	JobEventCanceled  = jobs.JobEventCanceled
)

type Region = network.Region
type Branch = network.Branch

type MonthlyObservation = series.MonthlyObservation

type AnalysisRun = analytics.AnalysisRun
type CoverageSnapshot = analytics.CoverageSnapshot
type RegionForecast = analytics.RegionForecast
type ForecastPoint = analytics.ForecastPoint
type ExpansionRecommendation = analytics.ExpansionRecommendation

type JobRun = jobs.JobRun
type JobRunEvent = jobs.JobRunEvent
