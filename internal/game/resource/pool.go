package resource

// Pool tracks a player's spendable currency: the persistent bones balance
// plus the turn-scoped sacrifice ledger. Ledger credits are spendable
// immediately but evaporate at the turn boundary; they are never folded
// into bones.
type Pool struct {
	bones      int
	sacrifices int
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{}
}

// Bones returns the persistent balance.
func (p *Pool) Bones() int {
	return p.bones
}

// Sacrifices returns the ledger total accumulated this turn.
func (p *Pool) Sacrifices() int {
	return p.sacrifices
}

// Total returns the spendable amount for cost checks: bones plus the
// current sacrifice ledger.
func (p *Pool) Total() int {
	return p.bones + p.sacrifices
}

// AddBones credits the persistent balance. Called once per creature death.
func (p *Pool) AddBones(n int) {
	if n > 0 {
		p.bones += n
	}
}

// AddSacrifice credits one unit to the turn ledger.
func (p *Pool) AddSacrifice() {
	p.sacrifices++
}

// CanPay reports whether amount is payable from the combined total.
func (p *Pool) CanPay(amount int) bool {
	return amount <= p.Total()
}

// Payment records how a cost was split across the two sources so a
// cancelled placement can be refunded exactly.
type Payment struct {
	FromSacrifices int
	FromBones      int
}

// Pay deducts amount, ledger first, then bones. Returns false and leaves
// the pool untouched if the total is insufficient.
func (p *Pool) Pay(amount int) (Payment, bool) {
	if amount < 0 || !p.CanPay(amount) {
		return Payment{}, false
	}
	pay := Payment{FromSacrifices: amount}
	if pay.FromSacrifices > p.sacrifices {
		pay.FromSacrifices = p.sacrifices
	}
	pay.FromBones = amount - pay.FromSacrifices
	p.sacrifices -= pay.FromSacrifices
	p.bones -= pay.FromBones
	return pay, true
}

// Refund reverses a prior Pay. Ledger refunds only make sense within the
// same turn; ResetSacrifices discards anything unclaimed.
func (p *Pool) Refund(pay Payment) {
	p.sacrifices += pay.FromSacrifices
	p.bones += pay.FromBones
}

// ResetSacrifices zeroes the turn ledger. Unspent value is lost, never
// converted to bones.
func (p *Pool) ResetSacrifices() {
	p.sacrifices = 0
}
