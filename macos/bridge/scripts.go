package bridge

// JXA adapters. Each adapter defines the same small vocabulary consumed by
// actionScript: stores, storeID, storeName, items, byID, toRecord, matchText,
// matchRange, create, fieldMap, probe.
var adapters = map[Domain]string{
	DomainReminders: `
const app = Application("Reminders");
const fieldMap = {title: "name", notes: "body", isCompleted: "completed", dueDate: "dueDate"};
function stores() { return app.lists(); }
function storeID(s) { return s.id(); }
function storeName(s) { return s.name(); }
function items(s) { return s.reminders(); }
function byID(s, id) { return s.reminders.whose({id: id})(); }
function toRecord(r, s) {
	const due = r.dueDate();
	return {id: r.id(), title: r.name(), notes: r.body() || "", dueDate: due ? due.toISOString() : null,
		isCompleted: r.completed(), listName: s.name()};
}
function matchText(s, p) {
	return s.reminders.whose({_or: p.fields.map(f => ({[fieldMap[f] || f]: {_contains: p.text}}))})();
}
function matchRange(s, p) { throw new Error("reminders do not support date range search"); }
function create(s, rec) {
	const props = {name: rec.title};
	if (rec.notes) { props.body = rec.notes; }
	if (rec.dueDate) { props.dueDate = new Date(rec.dueDate); }
	const r = app.Reminder(props);
	s.reminders.push(r);
	return r;
}
function probe() { return app.lists().length; }
`,
	DomainCalendar: `
const app = Application("Calendar");
const fieldMap = {title: "summary", notes: "description", location: "location"};
function stores() { return app.calendars(); }
function storeID(s) { return s.name(); }
function storeName(s) { return s.name(); }
function items(s) { return s.events(); }
function byID(s, id) { return s.events.whose({uid: id})(); }
function toRecord(e, s) {
	const end = e.endDate();
	return {id: e.uid(), title: e.summary(), notes: e.description() || "", location: e.location() || "",
		startDate: e.startDate().toISOString(), endDate: end ? end.toISOString() : null,
		isAllDay: e.alldayEvent(), calendarName: s.name()};
}
function matchText(s, p) {
	return s.events.whose({_or: p.fields.map(f => ({[fieldMap[f] || f]: {_contains: p.text}}))})();
}
function matchRange(s, p) {
	const clauses = [];
	if (p.end) { clauses.push({startDate: {_lessThanEquals: new Date(p.end)}}); }
	if (p.start) { clauses.push({endDate: {_greaterThanEquals: new Date(p.start)}}); }
	return s.events.whose({_and: clauses})();
}
function create(s, rec) {
	const props = {summary: rec.title, startDate: new Date(rec.startDate), endDate: new Date(rec.endDate)};
	if (rec.notes) { props.description = rec.notes; }
	if (rec.location) { props.location = rec.location; }
	const e = app.Event(props);
	s.events.push(e);
	return e;
}
function probe() { return app.calendars().length; }
`,
	DomainContacts: `
const app = Application("Contacts");
const fieldMap = {name: "name", organization: "organization", notes: "note"};
function stores() { return [app]; }
function storeID(s) { return "all"; }
function storeName(s) { return "All Contacts"; }
function items(s) { return app.people(); }
function byID(s, id) { return app.people.whose({id: id})(); }
function toRecord(p, s) {
	return {id: p.id(), name: p.name() || "", organization: p.organization() || "",
		phones: p.phones().map(x => x.value()), emails: p.emails().map(x => x.value())};
}
function matchText(s, p) {
	return app.people.whose({_or: p.fields.map(f => ({[fieldMap[f] || f]: {_contains: p.text}}))})();
}
function matchRange(s, p) { throw new Error("contacts do not support date range search"); }
function create(s, rec) {
	const parts = String(rec.name || "").split(" ");
	const person = app.Person({firstName: parts.shift() || "", lastName: parts.join(" ")});
	app.people.push(person);
	app.save();
	return person;
}
function probe() { return app.people.length; }
`,
	DomainNotes: `
const app = Application("Notes");
const fieldMap = {title: "name", body: "plaintext"};
function stores() { return app.folders(); }
function storeID(s) { return s.id(); }
function storeName(s) { return s.name(); }
function items(s) { return s.notes(); }
function byID(s, id) { return s.notes.whose({id: id})(); }
function toRecord(n, s) {
	const modified = n.modificationDate();
	return {id: n.id(), title: n.name(), body: n.plaintext(), folder: s.name(),
		modifiedAt: modified ? modified.toISOString() : null};
}
function matchText(s, p) {
	return s.notes.whose({_or: p.fields.map(f => ({[fieldMap[f] || f]: {_contains: p.text}}))})();
}
function matchRange(s, p) { throw new Error("notes do not support date range search"); }
function create(s, rec) {
	const n = app.Note({name: rec.title, body: rec.body || ""});
	s.notes.push(n);
	return n;
}
function probe() { return app.notes.length; }
`,
}

const actionScript = `
function run(argv) {
	const req = JSON.parse(argv[0] || "{}");
	function mustStore(id) {
		const found = stores().find(s => String(storeID(s)) === id);
		if (!found) { throw new Error("store not found: " + id); }
		return found;
	}
	switch (req.action) {
	case "probe":
		probe();
		return JSON.stringify({ok: true});
	case "stores":
		return JSON.stringify(stores().map(s => ({id: String(storeID(s)), name: storeName(s)})));
	case "readAll": {
		const s = mustStore(req.store);
		return JSON.stringify(items(s).map(i => toRecord(i, s)));
	}
	case "search": {
		const s = mustStore(req.store);
		const p = req.predicate;
		const found = (p.start || p.end) ? matchRange(s, p) : matchText(s, p);
		return JSON.stringify(found.map(i => toRecord(i, s)));
	}
	case "insert": {
		const s = mustStore(req.store);
		return JSON.stringify(toRecord(create(s, req.record), s));
	}
	case "setField": {
		const s = mustStore(req.store);
		const hits = byID(s, req.id);
		if (hits.length === 0) { return JSON.stringify({updated: false}); }
		const prop = fieldMap[req.field] || req.field;
		hits[0][prop] = req.value;
		return JSON.stringify({updated: true});
	}
	default:
		throw new Error("unknown action: " + req.action);
	}
}
`

func scriptFor(domain Domain) (string, bool) {
	adapter, ok := adapters[domain]
	if !ok {
		return "", false
	}
	return adapter + actionScript, true
}
