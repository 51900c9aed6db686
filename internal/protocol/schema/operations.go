package schema

import "github.com/danmuck/steemtx/internal/protocol"

// Definition is one row of a baked-in operation table.
type Definition struct {
	Name     string
	Params   []Param
	Reserved bool
}

func p(name string, kind protocol.Kind) Param {
	return Param{Name: name, Kind: kind}
}

const (
	str    = protocol.KindString
	i16    = protocol.KindInt16
	u16    = protocol.KindUint16
	u32    = protocol.KindUint32
	flag   = protocol.KindBool
	ts     = protocol.KindTimestamp
	amount = protocol.KindAmount
	price  = protocol.KindPrice
	strs   = protocol.KindStringArray
	perm   = protocol.KindPermission
	pubkey = protocol.KindPublicKey
)

// Operations is the steem-0.19 operation table. Slice position is the
// wire id: append only.
var Operations = []Definition{
	{Name: "vote", Params: []Param{p("voter", str), p("author", str), p("permlink", str), p("weight", i16)}},
	{Name: "comment", Params: []Param{
		p("parent_author", str), p("parent_permlink", str), p("author", str), p("permlink", str),
		p("title", str), p("body", str), p("json_metadata", str),
	}},
	{Name: "transfer", Params: []Param{p("from", str), p("to", str), p("amount", amount), p("memo", str)}},
	{Name: "transfer_to_vesting", Params: []Param{p("from", str), p("to", str), p("amount", amount)}},
	{Name: "withdraw_vesting", Params: []Param{p("account", str), p("vesting_shares", amount)}},
	{Name: "limit_order_create", Params: []Param{
		p("owner", str), p("orderid", u32), p("amount_to_sell", amount), p("min_to_receive", amount),
		p("fill_or_kill", flag), p("expiration", ts),
	}},
	{Name: "limit_order_cancel", Params: []Param{p("owner", str), p("orderid", u32)}},
	{Name: "feed_publish", Params: []Param{p("publisher", str), p("exchange_rate", price)}},
	{Name: "convert", Params: []Param{p("owner", str), p("requestid", u32), p("amount", amount)}},
	{Name: "account_create", Params: []Param{
		p("fee", amount), p("creator", str), p("new_account_name", str),
		p("owner", perm), p("active", perm), p("posting", perm), p("memo_key", pubkey), p("json_metadata", str),
	}},
	{Name: "account_update", Params: []Param{
		p("account", str), p("owner", perm), p("active", perm), p("posting", perm),
		p("memo_key", pubkey), p("json_metadata", str),
	}},
	{Name: "witness_update", Reserved: true},
	{Name: "account_witness_vote", Params: []Param{p("account", str), p("witness", str), p("approve", flag)}},
	{Name: "account_witness_proxy", Params: []Param{p("account", str), p("proxy", str)}},
	{Name: "pow", Reserved: true},
	{Name: "custom", Params: []Param{p("required_auths", strs), p("id", u16), p("data", str)}},
	{Name: "report_over_production", Reserved: true},
	{Name: "delete_comment", Params: []Param{p("author", str), p("permlink", str)}},
	{Name: "custom_json", Params: []Param{
		p("required_auths", strs), p("required_posting_auths", strs), p("id", str), p("json", str),
	}},
	{Name: "comment_options", Params: []Param{
		p("author", str), p("permlink", str), p("max_accepted_payout", amount), p("percent_steem_dollars", u16),
		p("allow_votes", flag), p("allow_curation_rewards", flag), p("extensions", strs),
	}},
	{Name: "set_withdraw_vesting_route", Params: []Param{
		p("from_account", str), p("to_account", str), p("percent", u16), p("auto_vest", flag),
	}},
	{Name: "limit_order_create2", Params: []Param{
		p("owner", str), p("orderid", u32), p("amount_to_sell", amount), p("exchange_rate", price),
		p("fill_or_kill", flag), p("expiration", ts),
	}},
	{Name: "claim_account", Params: []Param{p("creator", str), p("fee", amount), p("extensions", strs)}},
	{Name: "create_claimed_account", Params: []Param{
		p("creator", str), p("new_account_name", str), p("owner", perm), p("active", perm), p("posting", perm),
		p("memo_key", pubkey), p("json_metadata", str), p("extensions", strs),
	}},
	{Name: "request_account_recovery", Params: []Param{
		p("recovery_account", str), p("account_to_recover", str), p("new_owner_authority", perm), p("extensions", strs),
	}},
	{Name: "recover_account", Params: []Param{
		p("account_to_recover", str), p("new_owner_authority", perm), p("recent_owner_authority", perm), p("extensions", strs),
	}},
	{Name: "change_recovery_account", Params: []Param{
		p("account_to_recover", str), p("new_recovery_account", str), p("extensions", strs),
	}},
	{Name: "escrow_transfer", Params: []Param{
		p("from", str), p("to", str), p("agent", str), p("escrow_id", u32),
		p("sbd_amount", amount), p("steem_amount", amount), p("fee", amount),
		p("ratification_deadline", ts), p("escrow_expiration", ts), p("json_meta", str),
	}},
	{Name: "escrow_dispute", Params: []Param{p("from", str), p("to", str), p("agent", str), p("who", str), p("escrow_id", u32)}},
	{Name: "escrow_release", Params: []Param{
		p("from", str), p("to", str), p("agent", str), p("who", str), p("receiver", str), p("escrow_id", u32),
		p("sbd_amount", amount), p("steem_amount", amount),
	}},
	{Name: "pow2", Reserved: true},
	{Name: "escrow_approve", Params: []Param{
		p("from", str), p("to", str), p("agent", str), p("who", str), p("escrow_id", u32), p("approve", flag),
	}},
	{Name: "transfer_to_savings", Params: []Param{p("from", str), p("to", str), p("amount", amount), p("memo", str)}},
	{Name: "transfer_from_savings", Params: []Param{
		p("from", str), p("request_id", u32), p("to", str), p("amount", amount), p("memo", str),
	}},
	{Name: "cancel_transfer_from_savings", Params: []Param{p("from", str), p("request_id", u32)}},
	{Name: "custom_binary", Reserved: true},
	{Name: "decline_voting_rights", Params: []Param{p("account", str), p("decline", flag)}},
	{Name: "reset_account", Params: []Param{
		p("reset_account", str), p("account_to_reset", str), p("new_owner_authority", perm),
	}},
	{Name: "set_reset_account", Params: []Param{
		p("account", str), p("current_reset_account", str), p("reset_account", str),
	}},
	{Name: "claim_reward_balance", Params: []Param{
		p("account", str), p("reward_steem", amount), p("reward_sbd", amount), p("reward_vests", amount),
	}},
	{Name: "delegate_vesting_shares", Params: []Param{
		p("delegator", str), p("delegatee", str), p("vesting_shares", amount),
	}},
	{Name: "account_create_with_delegation", Params: []Param{
		p("fee", amount), p("delegation", amount), p("creator", str), p("new_account_name", str),
		p("owner", perm), p("active", perm), p("posting", perm), p("memo_key", pubkey),
		p("json_metadata", str), p("extensions", strs),
	}},
}
