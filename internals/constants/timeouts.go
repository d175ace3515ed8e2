package constants

import "time"

// Batas waktu request biasa (lihat middlewares.RequestContext)
const RequestTimeout = 5 * time.Second

// Batas waktu proses batch: billing bulanan & payroll (HTTP maupun cron)
const BatchTimeout = 10 * time.Minute
