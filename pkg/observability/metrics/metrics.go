package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	documentsProcessed atomic.Int64
	documentsFailed    atomic.Int64
	emailsSent         atomic.Int64
)

func MarkProcessed() {
	documentsProcessed.Add(1)
}

func MarkFailed() {
	documentsFailed.Add(1)
}

func MarkEmailSent() {
	emailsSent.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP onboardflow_documents_processed_total Number of document submissions processed successfully since startup.\n")
	fmt.Fprintf(w, "# TYPE onboardflow_documents_processed_total counter\n")
	fmt.Fprintf(w, "onboardflow_documents_processed_total %d\n", documentsProcessed.Load())

	fmt.Fprintf(w, "# HELP onboardflow_documents_failed_total Number of document submissions that failed since startup.\n")
	fmt.Fprintf(w, "# TYPE onboardflow_documents_failed_total counter\n")
	fmt.Fprintf(w, "onboardflow_documents_failed_total %d\n", documentsFailed.Load())

	fmt.Fprintf(w, "# HELP onboardflow_notification_emails_sent_total Number of notification emails delivered since startup.\n")
	fmt.Fprintf(w, "# TYPE onboardflow_notification_emails_sent_total counter\n")
	fmt.Fprintf(w, "onboardflow_notification_emails_sent_total %d\n", emailsSent.Load())
}
