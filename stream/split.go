package stream

type splitOperator struct {
	left  Operator
	right Operator
}

// Split fans the stream out to two downstream branches. Each branch
// receives its own copy of every record and reset, so one branch can
// never observe mutations made by the other. The left branch is fed
// first and its error, if any, suppresses delivery to the right.
func Split(left, right Operator) Operator {
	return &splitOperator{left: left, right: right}
}

func (o *splitOperator) Next(r Record) error {
	if err := o.left.Next(r.Clone()); err != nil {
		return err
	}
	return o.right.Next(r.Clone())
}

func (o *splitOperator) Reset(r Record) error {
	if err := o.left.Reset(r.Clone()); err != nil {
		return err
	}
	return o.right.Reset(r.Clone())
}
