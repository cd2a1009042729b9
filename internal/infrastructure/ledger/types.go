package ledger

type getBalancesRequest struct {
	Command   string   `json:"command"`
	Addresses []string `json:"addresses"`
	Threshold int      `json:"threshold"`
}

type getBalancesResponse struct {
	Balances []string `json:"balances"`
	Error    string   `json:"error,omitempty"`
}

type sendTrytesRequest struct {
	Command            string   `json:"command"`
	Trytes             []string `json:"trytes"`
	Depth              int      `json:"depth"`
	MinWeightMagnitude int      `json:"minWeightMagnitude"`
}

type transaction struct {
	Hash    string `json:"hash"`
	Address string `json:"address"`
	Value   int64  `json:"value"`
}

type sendTrytesResponse struct {
	Transactions []transaction `json:"transactions"`
	Error        string        `json:"error,omitempty"`
}

type getInclusionStatesRequest struct {
	Command      string   `json:"command"`
	Transactions []string `json:"transactions"`
}

type getInclusionStatesResponse struct {
	States []bool `json:"states"`
	Error  string `json:"error,omitempty"`
}

type errorResponse interface {
	errorMessage() string
}

func (r getBalancesResponse) errorMessage() string        { return r.Error }
func (r sendTrytesResponse) errorMessage() string         { return r.Error }
func (r getInclusionStatesResponse) errorMessage() string { return r.Error }
