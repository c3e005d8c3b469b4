package core

type (
	CustomerVisaStatus string
	VisaStatus         string
	TravelDirection    string
	ExpenseCategory    string
	DebtType           string
)

const (
	CustomerVisaPending    CustomerVisaStatus = "pending"
	CustomerVisaProcessing CustomerVisaStatus = "processing"
	CustomerVisaApproved   CustomerVisaStatus = "approved"
	CustomerVisaRejected   CustomerVisaStatus = "rejected"
	CustomerVisaIssued     CustomerVisaStatus = "issued"
	CustomerVisaExpired    CustomerVisaStatus = "expired"
)

const (
	VisaPending VisaStatus = "pending"
	VisaIssued  VisaStatus = "issued"
	VisaExpired VisaStatus = "expired"
)

const (
	EgyptToSaudi TravelDirection = "egypt-to-saudi"
	SaudiToEgypt TravelDirection = "saudi-to-egypt"
)

const (
	ExpenseOffice    ExpenseCategory = "office"
	ExpenseTransport ExpenseCategory = "transport"
	ExpenseMarketing ExpenseCategory = "marketing"
	ExpenseSalaries  ExpenseCategory = "salaries"
	ExpenseUtilities ExpenseCategory = "utilities"
	ExpenseOther     ExpenseCategory = "other"
)

const (
	Receivable DebtType = "receivable"
	Payable    DebtType = "payable"
)

func (s CustomerVisaStatus) Valid() bool {
	switch s {
	case CustomerVisaPending, CustomerVisaProcessing, CustomerVisaApproved,
		CustomerVisaRejected, CustomerVisaIssued, CustomerVisaExpired:
		return true
	}
	return false
}

func (s VisaStatus) Valid() bool {
	switch s {
	case VisaPending, VisaIssued, VisaExpired:
		return true
	}
	return false
}

func (d TravelDirection) Valid() bool {
	return d == EgyptToSaudi || d == SaudiToEgypt
}

func (c ExpenseCategory) Valid() bool {
	switch c {
	case ExpenseOffice, ExpenseTransport, ExpenseMarketing, ExpenseSalaries, ExpenseUtilities, ExpenseOther:
		return true
	}
	return false
}

// ExpenseCategories lists the categories in display order.
func ExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{ExpenseOffice, ExpenseTransport, ExpenseMarketing, ExpenseSalaries, ExpenseUtilities, ExpenseOther}
}

func (t DebtType) Valid() bool {
	return t == Receivable || t == Payable
}
