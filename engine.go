package portfolio

// Compute values a portfolio. It replays txs in chronological order with the
// weighted-average cost method, resolves a current price for every symbol and
// converts every figure into the domestic currency.
//
// txs may be in any order and must have been admitted (see [Admit]). Compute
// performs no I/O, does not retain or modify its inputs and always returns
// the same result for the same inputs. Selling more than is held is not
// rejected here: the position is closed.
func Compute(txs []Transaction, rates RateTable, prices PriceOverrides) *Snapshot {
	return NewJournal(txs).Snapshot(rates, prices)
}

// Snapshot replays the journal and values the resulting positions.
func (j *Journal) Snapshot(rates RateTable, prices PriceOverrides) *Snapshot {
	s := &Snapshot{
		rates:          rates,
		totalInvested:  M(0, Domestic),
		totalWithdrawn: M(0, Domestic),
	}

	index := make(map[string]*Position)
	position := func(symbol string, asset AssetType, currency Currency) *Position {
		p, ok := index[symbol]
		if !ok {
			p = newPosition(symbol, asset, currency)
			index[symbol] = p
			s.order = append(s.order, symbol)
		}
		return p
	}

	for _, e := range j.events {
		switch v := e.(type) {
		case creditCash:
			s.totalInvested = s.totalInvested.Add(rates.Convert(v.amount))
		case debitCash:
			s.totalWithdrawn = s.totalWithdrawn.Add(rates.Convert(v.amount))
		case acquireLot:
			position(v.symbol, v.asset, v.price.Currency()).acquire(v.quantity, v.price)
		case disposeLot:
			position(v.symbol, v.asset, v.price.Currency()).dispose(v.quantity, v.price)
		}
	}

	s.positions = make([]Position, 0, len(s.order))
	for _, symbol := range s.order {
		p := index[symbol]
		p.value(rates, prices)
		s.positions = append(s.positions, *p)
	}
	s.aggregate()
	return s
}
