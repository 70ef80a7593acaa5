package domain

// CurrencyMYR is the platform's settlement currency. All monetary amounts are
// stored as int64 cents (sen).
const CurrencyMYR = "MYR"
