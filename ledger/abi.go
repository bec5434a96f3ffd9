package ledger

import (
	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/roles"
)

const abiJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"isBlacklisted","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},

	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"burn","stateMutability":"nonpayable",
	 "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},

	{"type":"function","name":"mint","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"pause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"unpause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"blacklist","stateMutability":"nonpayable",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"unBlacklist","stateMutability":"nonpayable",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"batchBlacklist","stateMutability":"nonpayable",
	 "inputs":[{"name":"accounts","type":"address[]"}],"outputs":[{"name":"affected","type":"uint256"}]},
	{"type":"function","name":"batchUnBlacklist","stateMutability":"nonpayable",
	 "inputs":[{"name":"accounts","type":"address[]"}],"outputs":[{"name":"affected","type":"uint256"}]},

	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"spender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Paused","anonymous":false,"inputs":[
		{"name":"account","type":"address","indexed":false}]},
	{"type":"event","name":"Unpaused","anonymous":false,"inputs":[
		{"name":"account","type":"address","indexed":false}]},
	{"type":"event","name":"Blacklisted","anonymous":false,"inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"sender","type":"address","indexed":true}]},
	{"type":"event","name":"UnBlacklisted","anonymous":false,"inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"sender","type":"address","indexed":true}]}
]`

// ABI is the call and event surface of the ledger, role administration included
var ABI = custody.MergeABI(custody.MustParseABI(abiJSON), roles.ABI)
