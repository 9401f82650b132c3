package logic

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/phj1120/vibe-pay-sub000/internal/model"
)

// 内存实现的存取接口，供本包测试使用

type fakePointStore struct {
	mu   sync.Mutex
	lots map[string]*model.PointLot
	// conflictOnce 指定批次下一次UpdateRemain返回CAS冲突
	conflictOnce map[string]bool
	insertErr    error
}

func newFakePointStore() *fakePointStore {
	return &fakePointStore{
		lots:         make(map[string]*model.PointLot),
		conflictOnce: make(map[string]bool),
	}
}

func (f *fakePointStore) Insert(lot *model.PointLot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *lot
	f.lots[lot.PointHistoryNo] = &cp
	return nil
}

func (f *fakePointStore) Get(pointHistoryNo string) (*model.PointLot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lot, ok := f.lots[pointHistoryNo]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *lot
	return &cp, nil
}

func (f *fakePointStore) ListAvailable(memberNo string, now time.Time) ([]model.PointLot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.PointLot
	for _, lot := range f.lots {
		if lot.MemberNo != memberNo || lot.PointTxnCode != model.PointTxnEarn {
			continue
		}
		if lot.RemainPoint <= 0 || now.Before(lot.StartDateTime) || lot.Expired(now) {
			continue
		}
		result = append(result, *lot)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EndDateTime.Before(result[j].EndDateTime)
	})
	return result, nil
}

func (f *fakePointStore) UpdateRemain(pointHistoryNo string, expect, newRemain int64, operator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lot, ok := f.lots[pointHistoryNo]
	if !ok {
		return model.ErrNotFound
	}
	if f.conflictOnce[pointHistoryNo] {
		f.conflictOnce[pointHistoryNo] = false
		return model.ErrCASConflict
	}
	if lot.RemainPoint != expect {
		return model.ErrCASConflict
	}
	lot.RemainPoint = newRemain
	return nil
}

func (f *fakePointStore) ListByMember(memberNo string, page, pageSize int) ([]model.PointLot, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.PointLot
	for _, lot := range f.lots {
		if lot.MemberNo == memberNo {
			all = append(all, *lot)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].PointHistoryNo < all[j].PointHistoryNo
	})
	total := int64(len(all))
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

// remain 测试便捷方法
func (f *fakePointStore) remain(pointHistoryNo string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lot, ok := f.lots[pointHistoryNo]; ok {
		return lot.RemainPoint
	}
	return -1
}

func (f *fakePointStore) usageRows() []model.PointLot {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.PointLot
	for _, lot := range f.lots {
		if lot.PointTxnCode == model.PointTxnUse {
			result = append(result, *lot)
		}
	}
	return result
}

type fakeSettlementStore struct {
	mu      sync.Mutex
	records []*model.SettlementRecord
	// conflictOnce 下一次DecrementCancelable返回CAS冲突
	conflictOnce map[string]bool
	insertErr    error
}

func newFakeSettlementStore() *fakeSettlementStore {
	return &fakeSettlementStore{conflictOnce: make(map[string]bool)}
}

func (f *fakeSettlementStore) Insert(rec *model.SettlementRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *rec
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeSettlementStore) Get(payNo string) (*model.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.PayNo == payNo {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeSettlementStore) UpdateStatus(payNo, statusCode, approveNo, trdNo string, finishedAt *time.Time, operator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.PayNo == payNo {
			rec.PayStatusCode = statusCode
			rec.ApproveNo = approveNo
			rec.TrdNo = trdNo
			rec.PayFinishDtm = finishedAt
			return nil
		}
	}
	return model.ErrNotFound
}

func (f *fakeSettlementStore) DecrementCancelable(payNo string, expect, amount int64, operator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.PayNo == payNo {
			if f.conflictOnce[payNo] {
				f.conflictOnce[payNo] = false
				return model.ErrCASConflict
			}
			if rec.CancelableAmount != expect {
				return model.ErrCASConflict
			}
			rec.CancelableAmount = expect - amount
			return nil
		}
	}
	return model.ErrNotFound
}

func (f *fakeSettlementStore) ListByOrder(orderNo string) ([]model.SettlementRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.SettlementRecord
	for _, rec := range f.records {
		if rec.OrderNo == orderNo {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (f *fakeSettlementStore) byPayNo(payNo string) *model.SettlementRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.PayNo == payNo {
			cp := *rec
			return &cp
		}
	}
	return nil
}

func (f *fakeSettlementStore) byType(orderNo, typeCode string) []model.SettlementRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.SettlementRecord
	for _, rec := range f.records {
		if rec.OrderNo == orderNo && rec.PayTypeCode == typeCode {
			result = append(result, *rec)
		}
	}
	return result
}

type fakeChainStore struct {
	mu        sync.Mutex
	rows      []*model.OrderChainRow
	insertErr error
}

func newFakeChainStore() *fakeChainStore {
	return &fakeChainStore{}
}

func (f *fakeChainStore) Insert(row *model.OrderChainRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	// 复合主键约束，与真实表行为一致
	for _, r := range f.rows {
		if r.OrderNo == row.OrderNo && r.OrderSequence == row.OrderSequence && r.ProcessSequence == row.ProcessSequence {
			return errors.New("duplicate key value violates unique constraint \"order_detail_pkey\"")
		}
	}
	cp := *row
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeChainStore) GetByKey(orderNo string, orderSequence, processSequence int64) (*model.OrderChainRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.OrderNo == orderNo && row.OrderSequence == orderSequence && row.ProcessSequence == processSequence {
			cp := *row
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeChainStore) LatestProcessSequence(orderNo string, orderSequence int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest int64
	for _, row := range f.rows {
		if row.OrderNo == orderNo && row.OrderSequence == orderSequence && row.ProcessSequence > latest {
			latest = row.ProcessSequence
		}
	}
	return latest, nil
}

func (f *fakeChainStore) ListByOrder(orderNo string) ([]model.OrderChainRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.OrderChainRow
	for _, row := range f.rows {
		if row.OrderNo == orderNo {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (f *fakeChainStore) ListByMember(memberNo string, page, pageSize int) ([]model.OrderChainRow, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []model.OrderChainRow
	for _, row := range f.rows {
		if row.MemberNo == memberNo {
			matched = append(matched, *row)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

type fakePayLogStore struct {
	mu   sync.Mutex
	logs []*model.PayInterfaceLog
}

func newFakePayLogStore() *fakePayLogStore {
	return &fakePayLogStore{}
}

func (f *fakePayLogStore) Insert(l *model.PayInterfaceLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.logs = append(f.logs, &cp)
	return nil
}

func (f *fakePayLogStore) ListByPayNo(payNo string) ([]model.PayInterfaceLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []model.PayInterfaceLog
	for _, l := range f.logs {
		if l.PayNo == payNo {
			result = append(result, *l)
		}
	}
	return result, nil
}
