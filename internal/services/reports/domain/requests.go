package domain

// RequestFor returns the generation request body for an order kind
// the ads kind is paged directly and has no request
func RequestFor(kind Kind) ReportRequest {
	switch kind {
	case KindNewOrders:
		return ReportRequest{Kind: kind, Params: map[string]any{
			"type":                "newOrdersReport",
			"reportVersion":       "new",
			"includeSalesChannel": false,
			"numDays":             "1",
			"numMonth":            "0",
			"numYear":             "2015",
		}}
	case KindAllOrders:
		return ReportRequest{Kind: kind, Params: map[string]any{
			"type":                "allOrdersReport",
			"reportVersion":       "orderDateVersion",
			"includeSalesChannel": nil,
			"startDate":           "P1D",
			"endDate":             "P0D",
		}}
	}
	return ReportRequest{Kind: kind, Params: map[string]any{}}
}

// FileName is the deterministic upload name for a run
func FileName(kind Kind, ref ReferenceID, day string) string {
	switch kind {
	case KindNewOrders:
		return "orders-new-" + string(ref) + ".txt"
	case KindAllOrders:
		return "orders-all-" + string(ref) + ".txt"
	}
	return "ads-spend-" + day + ".txt"
}
