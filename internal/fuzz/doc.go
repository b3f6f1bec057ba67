// Package fuzztests houses Go fuzz harnesses for the balance scanner. The
// harness feeds arbitrary bytes through source.FileSet and balance.Scan under
// every string policy and checks the result with testkit invariants.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/balance, internal/testkit.

package fuzztests
