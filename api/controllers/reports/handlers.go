package reports

import (
	"net/http"

	"github.com/angelmondragon/basket-activity/api/responses"
	"github.com/angelmondragon/basket-activity/api/validators"
	"github.com/angelmondragon/basket-activity/internal/removeditems"
	pkgerrors "github.com/angelmondragon/basket-activity/pkg/errors"
	"github.com/angelmondragon/basket-activity/pkg/logger"
)

// RemovedItemsList returns every removal across all baskets.
func RemovedItemsList(svc removeditems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}
		records, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}

// RemovedItemsExportCSV streams removals inside ?from=&to= as a CSV download.
func RemovedItemsExportCSV(svc removeditems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "report service unavailable"))
			return
		}

		from, err := validators.ParseQueryDate(r, "from", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// headers are committed lazily so window errors still produce a JSON error
		started := false
		csvOut := removeditems.NewCSVWriter(w)
		start := func() error {
			if started {
				return nil
			}
			started = true
			responses.WriteAttachmentHeaders(w, removeditems.CSVContentType, removeditems.CSVFilename)
			w.WriteHeader(http.StatusOK)
			return csvOut.WriteHeader()
		}

		_, err = svc.Stream(r.Context(), from, to, func(batch []removeditems.Record) error {
			if err := start(); err != nil {
				return err
			}
			if err := csvOut.WriteRecords(batch); err != nil {
				return err
			}
			// flushing is best effort
			_ = http.NewResponseController(w).Flush()
			return nil
		})
		if err != nil {
			if !started {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			logExportFailure(r, logg, err)
			return
		}
		if err := start(); err != nil {
			logExportFailure(r, logg, err)
		}
	}
}

// logExportFailure records an error raised after the CSV headers were sent.
// Storage failures are errors; anything else is the client going away.
func logExportFailure(r *http.Request, logg *logger.Logger, err error) {
	if logg == nil {
		return
	}
	if pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		logg.Error(r.Context(), "report.removed_items.export_failed", err)
		return
	}
	logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "report.removed_items.export_aborted")
}
