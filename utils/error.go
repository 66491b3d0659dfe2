package utils

import "errors"

var ErrorRecordNotFound = errors.New("record not found")

// ErrorInvalidWeekFormat is returned for malformed week labels or date strings.
var ErrorInvalidWeekFormat = errors.New("invalid week format, expected YYYY-Www or YYYY-MM-DD")

// ErrorDuplicateInvoice is returned when an invoice already exists for the
// contractor + week pair. The uniqueness guard lives in the database; this
// sentinel is how a unique-key violation surfaces to the caller.
var ErrorDuplicateInvoice = errors.New("an invoice has already been submitted for this contractor and week")

var ErrorForbidden = errors.New("forbidden")

// ErrorNotificationFailure means the submission email could not be sent and
// the whole submission was rolled back. The worker must resubmit.
var ErrorNotificationFailure = errors.New("invoice notification could not be sent, please try submitting again")
