// Package order holds the order data model and the classification policy
// that turns an order's type and priority into a synthetic workload.
//
// Classification is permissive: unrecognized types and priorities are not
// errors, they resolve to the "other" bucket.
package order
