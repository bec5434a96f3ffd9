package wallet

import "github.com/sig-0/go-custody"

const abiJSON = `[
	{"type":"function","name":"submitTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"destination","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],
	 "outputs":[{"name":"transactionId","type":"uint256"}]},
	{"type":"function","name":"submitAndConfirmTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"destination","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],
	 "outputs":[{"name":"transactionId","type":"uint256"}]},
	{"type":"function","name":"confirmTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"transactionId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"batchConfirmTransactions","stateMutability":"nonpayable",
	 "inputs":[{"name":"transactionIds","type":"uint256[]"}],
	 "outputs":[{"name":"confirmed","type":"uint256"}]},
	{"type":"function","name":"revokeConfirmation","stateMutability":"nonpayable",
	 "inputs":[{"name":"transactionId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"executeTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"transactionId","type":"uint256"}],
	 "outputs":[{"name":"returnData","type":"bytes"}]},

	{"type":"function","name":"addOwner","stateMutability":"nonpayable",
	 "inputs":[{"name":"owner","type":"address"}],"outputs":[]},
	{"type":"function","name":"removeOwner","stateMutability":"nonpayable",
	 "inputs":[{"name":"owner","type":"address"}],"outputs":[]},
	{"type":"function","name":"replaceOwner","stateMutability":"nonpayable",
	 "inputs":[{"name":"owner","type":"address"},{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"changeRequirement","stateMutability":"nonpayable",
	 "inputs":[{"name":"required","type":"uint256"}],"outputs":[]},

	{"type":"function","name":"getOwners","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"isOwner","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"required","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getTransactionCount","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"getTransaction","stateMutability":"view",
	 "inputs":[{"name":"transactionId","type":"uint256"}],
	 "outputs":[{"name":"destination","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"},
	            {"name":"executed","type":"bool"},{"name":"confirmations","type":"uint256"}]},
	{"type":"function","name":"getTransactionStatus","stateMutability":"view",
	 "inputs":[{"name":"transactionId","type":"uint256"}],
	 "outputs":[{"name":"executed","type":"bool"},{"name":"confirmations","type":"uint256"},{"name":"executable","type":"bool"}]},
	{"type":"function","name":"isConfirmed","stateMutability":"view",
	 "inputs":[{"name":"transactionId","type":"uint256"},{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getConfirmations","stateMutability":"view",
	 "inputs":[{"name":"transactionId","type":"uint256"}],"outputs":[{"name":"","type":"address[]"}]},
	{"type":"function","name":"getTransactionIds","stateMutability":"view",
	 "inputs":[{"name":"from","type":"uint256"},{"name":"to","type":"uint256"},{"name":"pending","type":"bool"},{"name":"executed","type":"bool"}],
	 "outputs":[{"name":"","type":"uint256[]"}]},
	{"type":"function","name":"batchGetTransactionStatus","stateMutability":"view",
	 "inputs":[{"name":"transactionIds","type":"uint256[]"}],
	 "outputs":[{"name":"executed","type":"bool[]"},{"name":"confirmations","type":"uint256[]"}]},

	{"type":"event","name":"Deposit","anonymous":false,"inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Submission","anonymous":false,"inputs":[
		{"name":"transactionId","type":"uint256","indexed":true},
		{"name":"sender","type":"address","indexed":true}]},
	{"type":"event","name":"Confirmation","anonymous":false,"inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"transactionId","type":"uint256","indexed":true}]},
	{"type":"event","name":"Revocation","anonymous":false,"inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"transactionId","type":"uint256","indexed":true}]},
	{"type":"event","name":"Execution","anonymous":false,"inputs":[
		{"name":"transactionId","type":"uint256","indexed":true},
		{"name":"sender","type":"address","indexed":true}]},
	{"type":"event","name":"OwnerAddition","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true}]},
	{"type":"event","name":"OwnerRemoval","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true}]},
	{"type":"event","name":"RequirementChange","anonymous":false,"inputs":[
		{"name":"required","type":"uint256","indexed":false}]}
]`

// ABI is the call and event surface of the quorum wallet
var ABI = custody.MustParseABI(abiJSON)

// privileged methods are only dispatched when the wallet executes a transaction on itself
var privileged = map[string]struct{}{
	"addOwner":          {},
	"removeOwner":       {},
	"replaceOwner":      {},
	"changeRequirement": {},
}
