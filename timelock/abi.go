package timelock

import (
	"github.com/sig-0/go-custody"
	"github.com/sig-0/go-custody/roles"
)

const abiJSON = `[
	{"type":"function","name":"queueTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"signature","type":"string"},
	           {"name":"data","type":"bytes"},{"name":"eta","type":"uint256"}],
	 "outputs":[{"name":"txHash","type":"bytes32"}]},
	{"type":"function","name":"cancelTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"signature","type":"string"},
	           {"name":"data","type":"bytes"},{"name":"eta","type":"uint256"}],
	 "outputs":[]},
	{"type":"function","name":"executeTransaction","stateMutability":"nonpayable",
	 "inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"signature","type":"string"},
	           {"name":"data","type":"bytes"},{"name":"eta","type":"uint256"}],
	 "outputs":[{"name":"returnData","type":"bytes"}]},
	{"type":"function","name":"updateDelay","stateMutability":"nonpayable",
	 "inputs":[{"name":"newDelay","type":"uint256"}],"outputs":[]},

	{"type":"function","name":"delay","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"isQueued","stateMutability":"view",
	 "inputs":[{"name":"txHash","type":"bytes32"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getFingerprint","stateMutability":"view",
	 "inputs":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"signature","type":"string"},
	           {"name":"data","type":"bytes"},{"name":"eta","type":"uint256"}],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"GRACE_PERIOD","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"MINIMUM_DELAY","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"MAXIMUM_DELAY","stateMutability":"view",
	 "inputs":[],"outputs":[{"name":"","type":"uint256"}]},

	{"type":"event","name":"Deposit","anonymous":false,"inputs":[
		{"name":"sender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"NewDelay","anonymous":false,"inputs":[
		{"name":"newDelay","type":"uint256","indexed":true}]},
	{"type":"event","name":"QueueTransaction","anonymous":false,"inputs":[
		{"name":"txHash","type":"bytes32","indexed":true},
		{"name":"target","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"signature","type":"string","indexed":false},
		{"name":"data","type":"bytes","indexed":false},
		{"name":"eta","type":"uint256","indexed":false},
		{"name":"sender","type":"address","indexed":false}]},
	{"type":"event","name":"CancelTransaction","anonymous":false,"inputs":[
		{"name":"txHash","type":"bytes32","indexed":true},
		{"name":"target","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"signature","type":"string","indexed":false},
		{"name":"data","type":"bytes","indexed":false},
		{"name":"eta","type":"uint256","indexed":false},
		{"name":"sender","type":"address","indexed":false}]},
	{"type":"event","name":"ExecuteTransaction","anonymous":false,"inputs":[
		{"name":"txHash","type":"bytes32","indexed":true},
		{"name":"target","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false},
		{"name":"signature","type":"string","indexed":false},
		{"name":"data","type":"bytes","indexed":false},
		{"name":"eta","type":"uint256","indexed":false},
		{"name":"sender","type":"address","indexed":false}]}
]`

// ABI is the call and event surface of the delay controller, role administration included
var ABI = custody.MergeABI(custody.MustParseABI(abiJSON), roles.ABI)

// privileged methods are only dispatched when the controller executes a call on itself
var privileged = map[string]struct{}{
	"updateDelay": {},
}
