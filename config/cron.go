package config

import (
	"storefront.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"cartsweepjob":    {Schedule: "@every 5m", Job: jobs.CartSweepJob},
	"journalpurgejob": {Schedule: "@daily", Job: jobs.JournalPurgeJob},
	// Add more jobs here
}
