// Package payments is a client for the Payments API.
//
// A Client is built from options or from the environment:
//
//	client, err := payments.NewClientFromEnv()
//	if err != nil {
//		return err
//	}
//	resp, err := client.Payments.ListPayments(ctx, payments.ListPaymentsParams{
//		SortOrder: payments.String("ASC"),
//	})
//
// Every endpoint validates its arguments before anything is sent and
// validates the response against the model schema before binding it. See
// package request for the error types returned in each case.
package payments
