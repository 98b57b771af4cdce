package usecase

// LastRunes is exported for testing
var LastRunes = lastRunes

// HistorySize is exported for testing
var HistorySize = historySize
